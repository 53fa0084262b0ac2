package interfaces

import (
	"context"

	"github.com/gagliardetto/solana-go"

	domaintypes "github.com/FME849/wsos23-voting-app/internal/domain/types"
)

// ClusterClient is how the client talks to a cluster node, all with context.
type ClusterClient interface {
	GetHealth(ctx context.Context) error
	GetSlot(ctx context.Context) (uint64, error)
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (blockhash solana.Hash, lastValidBlockHeight uint64, err error)

	SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (domaintypes.SimulationResult, error)
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*domaintypes.SignatureStatus, error)
	GetTransaction(ctx context.Context, sig solana.Signature) (*domaintypes.TransactionRecord, error)

	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*domaintypes.Account, error)
	GetProgramAccounts(
		ctx context.Context,
		program solana.PublicKey,
		filters ...domaintypes.MemcmpFilter,
	) ([]domaintypes.KeyedAccount, error)

	RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error)
}
