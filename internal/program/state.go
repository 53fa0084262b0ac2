package program

import "github.com/FME849/wsos23-voting-app/internal/domain"

// CloseApplication ends the application stage. With a lone candidate the
// election closes straight away; otherwise voting opens. WinnersID is left
// untouched either way.
func CloseApplication(e *domain.ElectionData) error {
	if e.Stage != domain.StageApplication {
		return ErrApplicationIsClosed
	}
	if e.Candidates == 1 {
		e.Stage = domain.StageClosed
		return nil
	}
	e.Stage = domain.StageVoting
	return nil
}

// CloseVoting ends the voting stage.
func CloseVoting(e *domain.ElectionData) error {
	if e.Stage != domain.StageVoting {
		return ErrNotVotingStage
	}
	e.Stage = domain.StageClosed
	return nil
}

// RecordVote updates the running leader after candidate id reached votes.
// On a tie the current leader keeps the lead.
func RecordVote(e *domain.ElectionData, id, votes uint64) {
	if e.WinnersID == id {
		e.WinnersVotes++
		return
	}
	if e.WinnersVotes >= votes {
		return
	}
	e.WinnersID = id
	e.WinnersVotes = votes
}

// ChangeStage applies an initiator's request to move e to next.
func ChangeStage(e *domain.ElectionData, next domain.ElectionStage) error {
	if e.Stage == domain.StageClosed {
		return ErrVotingEnded
	}
	switch next {
	case domain.StageVoting:
		return CloseApplication(e)
	case domain.StageClosed:
		return CloseVoting(e)
	}
	// Applications cannot be reopened.
	return ErrWrongInitiator
}
