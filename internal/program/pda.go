package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ElectionAddress derives the election account for electionID created by
// initiator.
func ElectionAddress(programID solana.PublicKey, electionID string, initiator solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(electionID) > MaxSeedLength {
		return solana.PublicKey{}, 0, fmt.Errorf("election id %q longer than %d bytes", electionID, MaxSeedLength)
	}
	return solana.FindProgramAddress(electionSeeds(electionID, initiator), programID)
}

// CandidateAddress derives the candidate account of applicant in election.
func CandidateAddress(programID, applicant, election solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(candidateSeeds(applicant, election), programID)
}

// VoteAddress derives the vote receipt of voter in election.
func VoteAddress(programID, voter, election solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(voteSeeds(voter, election), programID)
}

func electionSeeds(electionID string, initiator solana.PublicKey) [][]byte {
	return [][]byte{[]byte(electionID), initiator.Bytes()}
}

func candidateSeeds(applicant, election solana.PublicKey) [][]byte {
	return [][]byte{[]byte("candidate"), applicant.Bytes(), election.Bytes()}
}

func voteSeeds(voter, election solana.PublicKey) [][]byte {
	return [][]byte{[]byte("vote"), voter.Bytes(), election.Bytes()}
}
