package interfaces

import (
	"context"

	"github.com/gagliardetto/solana-go"

	domaintypes "github.com/FME849/wsos23-voting-app/internal/domain/types"
)

// WalletService creates, imports and loads the local signing keypair.
type WalletService interface {
	GenerateKeypair(passphrase string, force bool) (solana.PublicKey, domaintypes.Fingerprint, error)
	ImportKeypair(passphrase string, key solana.PrivateKey, force bool) (solana.PublicKey, error)
	LoadKeypair(passphrase string) (solana.PrivateKey, error)
	Address(passphrase string) (solana.PublicKey, domaintypes.Fingerprint, error)
}

// ElectionService is the client handle for the deployed voting program.
type ElectionService interface {
	ProgramID() solana.PublicKey
	Payer() solana.PublicKey
	EnsureDeployed(ctx context.Context) error

	Initialize(ctx context.Context) (solana.Signature, error)
	CreateElection(ctx context.Context, electionID string) (solana.Signature, solana.PublicKey, error)
	Apply(ctx context.Context, election solana.PublicKey) (solana.Signature, solana.PublicKey, error)
	ChangeStage(
		ctx context.Context,
		election solana.PublicKey,
		stage domaintypes.ElectionStage,
	) (solana.Signature, error)
	Vote(ctx context.Context, election, candidate solana.PublicKey) (solana.Signature, solana.PublicKey, error)

	Election(ctx context.Context, election solana.PublicKey) (domaintypes.ElectionData, error)
	Candidate(ctx context.Context, candidate solana.PublicKey) (domaintypes.CandidateData, error)
	Candidates(ctx context.Context, election solana.PublicKey) ([]domaintypes.Candidate, error)
	MyVote(ctx context.Context, election solana.PublicKey) (domaintypes.MyVote, error)
}
