package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
)

func signerAccount(ctx *ledger.InvokeContext, i int, mut bool) (*ledger.AccountInfo, error) {
	acc, err := ctx.Account(i)
	if err != nil {
		return nil, err
	}
	if !acc.IsSigner {
		return nil, ErrAccountNotSigner
	}
	if mut && !acc.IsWritable {
		return nil, ErrConstraintMut
	}
	return acc, nil
}

func systemAccount(ctx *ledger.InvokeContext, i int) error {
	acc, err := ctx.Account(i)
	if err != nil {
		return err
	}
	if !acc.Key.Equals(solana.SystemProgramID) {
		return ErrInvalidProgramID
	}
	return nil
}

// initAccount creates target at the PDA derived from seeds, paid by payer.
func initAccount(ctx *ledger.InvokeContext, target, payer *ledger.AccountInfo, seeds [][]byte) error {
	expected, _, err := solana.FindProgramAddress(seeds, ctx.ProgramID)
	if err != nil || !expected.Equals(target.Key) {
		return ErrConstraintSeeds
	}
	if !target.IsWritable {
		return ErrConstraintMut
	}
	return ctx.CreateAccount(payer, target, AccountSpace, ctx.ProgramID)
}

// owned checks that acc is an initialised, writable account of this program.
func owned(ctx *ledger.InvokeContext, acc *ledger.AccountInfo) error {
	if acc.Lamports == 0 && len(acc.Data) == 0 {
		return ErrAccountNotInitialized
	}
	if !acc.Owner.Equals(ctx.ProgramID) {
		return ErrAccountOwnedByWrongProgram
	}
	if !acc.IsWritable {
		return ErrConstraintMut
	}
	return nil
}

func loadElection(ctx *ledger.InvokeContext, acc *ledger.AccountInfo) (domain.ElectionData, error) {
	if err := owned(ctx, acc); err != nil {
		return domain.ElectionData{}, err
	}
	return DecodeElection(acc.Data)
}

func loadCandidate(ctx *ledger.InvokeContext, acc *ledger.AccountInfo) (domain.CandidateData, error) {
	if err := owned(ctx, acc); err != nil {
		return domain.CandidateData{}, err
	}
	return DecodeCandidate(acc.Data)
}

func storeElection(acc *ledger.AccountInfo, e domain.ElectionData) error {
	b, err := EncodeElection(e)
	if err != nil {
		return ErrAccountDidNotSerialize
	}
	return store(acc, b)
}

func storeCandidate(acc *ledger.AccountInfo, c domain.CandidateData) error {
	b, err := EncodeCandidate(c)
	if err != nil {
		return ErrAccountDidNotSerialize
	}
	return store(acc, b)
}

func storeMyVote(acc *ledger.AccountInfo, v domain.MyVote) error {
	b, err := EncodeMyVote(v)
	if err != nil {
		return ErrAccountDidNotSerialize
	}
	return store(acc, b)
}

func store(acc *ledger.AccountInfo, b []byte) error {
	if len(b) > len(acc.Data) {
		return ErrAccountDidNotSerialize
	}
	copy(acc.Data, b)
	return nil
}
