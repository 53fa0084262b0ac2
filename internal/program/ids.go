package program

import "github.com/gagliardetto/solana-go"

// ProgramID is the address the voting program is deployed at by default.
var ProgramID = solana.MustPublicKeyFromBase58("DAExTRo6cEotQAgtREjCrS6R2tL54VfgBWsP7xozMiht")

const (
	// WorkspaceName is the program name used in workspace files.
	WorkspaceName = "wsos23_voting_app"

	// AccountSpace is the size every program account is allocated with.
	AccountSpace = 5000

	// MaxSeedLength bounds a single PDA seed, and therefore an election ID.
	MaxSeedLength = 32
)
