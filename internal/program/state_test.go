package program_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/program"
)

func TestCloseApplication(t *testing.T) {
	cases := []struct {
		name       string
		candidates uint64
		wantStage  domain.ElectionStage
		wantWinner uint64
	}{
		{"no candidates", 0, domain.StageVoting, 0},
		{"single candidate closes", 1, domain.StageClosed, 0},
		{"several candidates vote", 3, domain.StageVoting, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := domain.ElectionData{Candidates: tc.candidates}
			require.NoError(t, program.CloseApplication(&e))
			assert.Equal(t, tc.wantStage, e.Stage)
			assert.Equal(t, tc.wantWinner, e.WinnersID)
		})
	}

	e := domain.ElectionData{Stage: domain.StageVoting}
	assert.ErrorIs(t, program.CloseApplication(&e), program.ErrApplicationIsClosed)
}

func TestCloseVoting(t *testing.T) {
	e := domain.ElectionData{Stage: domain.StageApplication}
	assert.ErrorIs(t, program.CloseVoting(&e), program.ErrNotVotingStage)

	e.Stage = domain.StageVoting
	require.NoError(t, program.CloseVoting(&e))
	assert.Equal(t, domain.StageClosed, e.Stage)
}

func TestChangeStage(t *testing.T) {
	e := domain.ElectionData{Stage: domain.StageApplication, Candidates: 2}
	assert.ErrorIs(t, program.ChangeStage(&e, domain.StageApplication), program.ErrWrongInitiator)
	assert.ErrorIs(t, program.ChangeStage(&e, domain.StageClosed), program.ErrNotVotingStage)

	require.NoError(t, program.ChangeStage(&e, domain.StageVoting))
	require.NoError(t, program.ChangeStage(&e, domain.StageClosed))
	assert.ErrorIs(t, program.ChangeStage(&e, domain.StageVoting), program.ErrVotingEnded)
}

func TestRecordVote_TracksLeader(t *testing.T) {
	var e domain.ElectionData

	program.RecordVote(&e, 1, 1)
	assert.Equal(t, uint64(1), e.WinnersID)
	assert.Equal(t, uint64(1), e.WinnersVotes)

	// A tie keeps the current leader.
	program.RecordVote(&e, 2, 1)
	assert.Equal(t, uint64(1), e.WinnersID)

	program.RecordVote(&e, 2, 2)
	assert.Equal(t, uint64(2), e.WinnersID)
	assert.Equal(t, uint64(2), e.WinnersVotes)

	program.RecordVote(&e, 2, 3)
	assert.Equal(t, uint64(2), e.WinnersID)
	assert.Equal(t, uint64(3), e.WinnersVotes)
}
