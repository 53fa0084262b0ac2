package ledger

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

// Program is native code the bank can execute for a program ID.
type Program interface {
	ID() solana.PublicKey
	Process(ctx *InvokeContext, data []byte) error
}

// AccountInfo is an instruction's view of one account. Entries that name the
// same key share the same underlying Account.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	*domain.Account
}

// InvokeContext is handed to a Program for one instruction.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Accounts  []*AccountInfo
	Slot      uint64

	logs *[]string
}

// Log appends a "Program log:" line to the transaction logs.
func (c *InvokeContext) Log(format string, args ...any) {
	*c.logs = append(*c.logs, "Program log: "+fmt.Sprintf(format, args...))
}

// Account returns the i-th instruction account.
func (c *InvokeContext) Account(i int) (*AccountInfo, error) {
	if i < 0 || i >= len(c.Accounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	return c.Accounts[i], nil
}

// CreateAccount funds target with the rent-exempt minimum for space bytes from
// payer and assigns it to owner. The target is an address the calling
// program derived, so it does not have to sign. The call is logged as a
// nested invocation of the system program.
func (c *InvokeContext) CreateAccount(payer, target *AccountInfo, space uint64, owner solana.PublicKey) error {
	*c.logs = append(*c.logs, fmt.Sprintf("Program %s invoke [2]", solana.SystemProgramID))
	if err := createAccount(payer, target, RentExemptMinimum(space), space, owner); err != nil {
		*c.logs = append(*c.logs, fmt.Sprintf("Program %s failed: %s", solana.SystemProgramID, instructionErrorText(err)))
		return err
	}
	*c.logs = append(*c.logs, fmt.Sprintf("Program %s success", solana.SystemProgramID))
	return nil
}

func createAccount(from, to *AccountInfo, lamports, space uint64, owner solana.PublicKey) error {
	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if !from.IsWritable || !to.IsWritable {
		return ErrReadonlyLamportChange
	}
	if to.Lamports > 0 || len(to.Data) > 0 || !to.Owner.Equals(solana.SystemProgramID) {
		return ErrAccountAlreadyInUse
	}
	if space > MaxPermittedDataLength {
		return ErrInvalidAccountDataLength
	}
	if from.Lamports < lamports {
		return ErrInsufficientFunds
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	to.Data = make([]byte, space)
	to.Owner = owner
	return nil
}

type preState struct {
	lamports uint64
	owner    solana.PublicKey
	data     []byte
	fresh    bool
}

func capture(infos []*AccountInfo) map[solana.PublicKey]preState {
	out := make(map[solana.PublicKey]preState, len(infos))
	for _, info := range infos {
		if _, ok := out[info.Key]; ok {
			continue
		}
		out[info.Key] = preState{
			lamports: info.Lamports,
			owner:    info.Owner,
			data:     append([]byte(nil), info.Data...),
			fresh:    info.Lamports == 0 && len(info.Data) == 0 && info.Owner.Equals(solana.SystemProgramID),
		}
	}
	return out
}

// verifyInstruction enforces the post-instruction account rules.
func verifyInstruction(programID solana.PublicKey, infos []*AccountInfo, pre map[solana.PublicKey]preState) error {
	var before, after uint64
	seen := make(map[solana.PublicKey]bool, len(pre))
	for _, info := range infos {
		if seen[info.Key] {
			continue
		}
		seen[info.Key] = true
		p := pre[info.Key]

		dataChanged := !bytes.Equal(info.Data, p.data)
		if !info.IsWritable {
			if info.Lamports != p.lamports {
				return ErrReadonlyLamportChange
			}
			if dataChanged || !info.Owner.Equals(p.owner) {
				return ErrReadonlyDataModified
			}
		}
		if dataChanged && !p.owner.Equals(programID) && !p.fresh {
			return ErrExternalAccountDataModified
		}
		before += p.lamports
		after += info.Lamports
	}
	if before != after {
		return ErrUnbalancedInstruction
	}
	return nil
}
