package domain

import (
	interfaces "github.com/FME849/wsos23-voting-app/internal/domain/interfaces"
	types "github.com/FME849/wsos23-voting-app/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint       = types.Fingerprint
	ElectionStage     = types.ElectionStage
	ElectionData      = types.ElectionData
	CandidateData     = types.CandidateData
	MyVote            = types.MyVote
	Candidate         = types.Candidate
	Account           = types.Account
	KeyedAccount      = types.KeyedAccount
	MemcmpFilter      = types.MemcmpFilter
	TransactionError  = types.TransactionError
	TransactionRecord = types.TransactionRecord
	SignatureStatus   = types.SignatureStatus
	SimulationResult  = types.SimulationResult
	Snapshot          = types.Snapshot
)

// Stage values re-exported for callers that only import domain.
const (
	StageApplication = types.StageApplication
	StageVoting      = types.StageVoting
	StageClosed      = types.StageClosed

	LamportsPerSOL = types.LamportsPerSOL
)

// ParseElectionStage re-exports types.ParseElectionStage.
var ParseElectionStage = types.ParseElectionStage

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	ClusterClient   = interfaces.ClusterClient
	KeypairStore    = interfaces.KeypairStore
	LedgerStore     = interfaces.LedgerStore
	WalletService   = interfaces.WalletService
	ElectionService = interfaces.ElectionService
)
