package types

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ElectionStage is the lifecycle position of an election.
type ElectionStage uint8

const (
	StageApplication ElectionStage = iota
	StageVoting
	StageClosed
)

// String returns the stage name as used on the command line.
func (s ElectionStage) String() string {
	switch s {
	case StageApplication:
		return "application"
	case StageVoting:
		return "voting"
	case StageClosed:
		return "closed"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the known stages.
func (s ElectionStage) Valid() bool { return s <= StageClosed }

// ParseElectionStage accepts the names produced by String.
func ParseElectionStage(v string) (ElectionStage, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "application":
		return StageApplication, nil
	case "voting":
		return StageVoting, nil
	case "closed":
		return StageClosed, nil
	}
	return 0, fmt.Errorf("unknown election stage %q", v)
}

// ElectionData is the on-chain election account.
type ElectionData struct {
	ID           string           `json:"id"`
	Candidates   uint64           `json:"candidates"`
	Stage        ElectionStage    `json:"stage"`
	Initiator    solana.PublicKey `json:"initiator"`
	WinnersID    uint64           `json:"winners_id"`
	WinnersVotes uint64           `json:"winners_votes"`
}

// CandidateData is created when a signer applies to an election.
type CandidateData struct {
	ID     uint64           `json:"id"`
	Pubkey solana.PublicKey `json:"pubkey"`
	Votes  uint64           `json:"votes"`
}

// MyVote records which candidate a voter chose. One per voter per election.
type MyVote struct {
	ID     uint64           `json:"id"`
	Pubkey solana.PublicKey `json:"pubkey"`
}

// Candidate pairs decoded candidate state with its account address.
type Candidate struct {
	Address solana.PublicKey `json:"address"`
	CandidateData
}
