package ledger_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
	"github.com/FME849/wsos23-voting-app/internal/store"
)

var testProgramID = solana.MustPublicKeyFromBase58("Test111111111111111111111111111111111111111")

type codeError uint32

func (e codeError) Error() string      { return "test program failure" }
func (e codeError) CustomCode() uint32 { return uint32(e) }

const (
	opWrite byte = iota
	opCreate
	opFail
	opMint
)

// testProgram exercises the runtime checks with a one-byte opcode.
type testProgram struct{}

func (testProgram) ID() solana.PublicKey { return testProgramID }

func (testProgram) Process(ctx *ledger.InvokeContext, data []byte) error {
	if len(data) == 0 {
		return ledger.ErrInvalidInstructionData
	}
	switch data[0] {
	case opWrite:
		acc, err := ctx.Account(0)
		if err != nil {
			return err
		}
		if len(acc.Data) == 0 {
			acc.Data = []byte{0}
		}
		acc.Data[0]++
		ctx.Log("wrote %d", acc.Data[0])
		return nil
	case opCreate:
		payer, err := ctx.Account(0)
		if err != nil {
			return err
		}
		target, err := ctx.Account(1)
		if err != nil {
			return err
		}
		return ctx.CreateAccount(payer, target, 16, testProgramID)
	case opFail:
		return codeError(42)
	case opMint:
		acc, err := ctx.Account(0)
		if err != nil {
			return err
		}
		acc.Lamports += 1
		return nil
	}
	return ledger.ErrInvalidInstructionData
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	priv, _, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	return priv
}

func newBank(t *testing.T, opts ...ledger.Option) *ledger.Bank {
	t.Helper()
	opts = append([]ledger.Option{ledger.WithProgram(testProgram{})}, opts...)
	b, err := ledger.New(opts...)
	require.NoError(t, err)
	return b
}

func fund(t *testing.T, b *ledger.Bank, to solana.PublicKey, lamports uint64) {
	t.Helper()
	_, err := b.Airdrop(to, lamports)
	require.NoError(t, err)
}

func signedTx(t *testing.T, b *ledger.Bank, signers []solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
	hash, _ := b.LatestBlockhash()
	tx, err := solana.NewTransaction(ixs, hash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(k) {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func testIx(op byte, accounts ...*solana.AccountMeta) solana.Instruction {
	return solana.NewInstruction(testProgramID, accounts, []byte{op})
}

func TestAirdrop_CreditsRecipient(t *testing.T) {
	b := newBank(t)
	user := newKey(t).PublicKey()

	sig, err := b.Airdrop(user, 2*solana.LAMPORTS_PER_SOL)
	require.NoError(t, err)
	assert.Equal(t, 2*solana.LAMPORTS_PER_SOL, b.Balance(user))

	rec, ok := b.Status(sig)
	require.True(t, ok)
	assert.Nil(t, rec.Err)
	assert.Equal(t, ledger.FeePerSignature, rec.Fee)

	_, err = b.Airdrop(user, 0)
	assert.ErrorIs(t, err, ledger.ErrAirdropAmount)
}

func TestProcess_TransferChargesFee(t *testing.T) {
	b := newBank(t)
	alice, bob := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), 1_000_000)

	tx := signedTx(t, b, []solana.PrivateKey{alice},
		system.NewTransferInstruction(100_000, alice.PublicKey(), bob.PublicKey()).Build())
	sig, err := b.Process(tx)
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)

	assert.Equal(t, uint64(1_000_000-100_000)-ledger.FeePerSignature, b.Balance(alice.PublicKey()))
	assert.Equal(t, uint64(100_000), b.Balance(bob.PublicKey()))
}

func TestProcess_RejectsDuplicate(t *testing.T) {
	b := newBank(t)
	alice := newKey(t)
	fund(t, b, alice.PublicKey(), 1_000_000)

	tx := signedTx(t, b, []solana.PrivateKey{alice}, testIx(opFail))
	_, err := b.Process(tx)
	require.Error(t, err)
	_, err = b.Process(tx)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)
}

func TestProcess_ExpiredBlockhash(t *testing.T) {
	b := newBank(t)
	alice := newKey(t)
	fund(t, b, alice.PublicKey(), 1_000_000)

	tx := signedTx(t, b, []solana.PrivateKey{alice}, testIx(opFail))
	for i := 0; i < ledger.MaxRecentBlockhashes; i++ {
		b.AdvanceSlot()
	}
	assert.False(t, b.IsBlockhashValid(tx.Message.RecentBlockhash))
	_, err := b.Process(tx)
	assert.ErrorIs(t, err, ledger.ErrBlockhashNotFound)
}

func TestProcess_BadSignature(t *testing.T) {
	b := newBank(t)
	alice := newKey(t)
	fund(t, b, alice.PublicKey(), 1_000_000)

	tx := signedTx(t, b, []solana.PrivateKey{alice}, testIx(opFail))
	tx.Signatures[0][0] ^= 0xff
	_, err := b.Process(tx)
	assert.ErrorIs(t, err, ledger.ErrSignatureFailure)
}

func TestProcess_InsufficientFundsForFee(t *testing.T) {
	b := newBank(t)
	broke := newKey(t)

	tx := signedTx(t, b, []solana.PrivateKey{broke}, testIx(opFail))
	_, err := b.Process(tx)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFundsForFee)
}

func TestProcess_FailureRollsBackButKeepsFee(t *testing.T) {
	b := newBank(t)
	alice, target := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), 10*solana.LAMPORTS_PER_SOL)
	before := b.Balance(alice.PublicKey())

	tx := signedTx(t, b, []solana.PrivateKey{alice},
		testIx(opCreate, solana.Meta(alice.PublicKey()).WRITE().SIGNER(), solana.Meta(target.PublicKey()).WRITE()),
		testIx(opFail),
	)
	sig, err := b.Process(tx)
	require.Error(t, err)

	var ie *ledger.InstructionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Index)
	assert.Contains(t, err.Error(), "custom program error: 0x2a")

	_, exists := b.Account(target.PublicKey())
	assert.False(t, exists, "created account must be rolled back")
	assert.Equal(t, before-ledger.FeePerSignature, b.Balance(alice.PublicKey()))

	rec, ok := b.Status(sig)
	require.True(t, ok)
	require.NotNil(t, rec.Err)
	assert.Equal(t, "Custom", rec.Err.Kind)
	require.NotNil(t, rec.Err.Custom)
	assert.Equal(t, uint32(42), *rec.Err.Custom)
	require.NotNil(t, rec.Err.InstructionIndex)
	assert.Equal(t, 1, *rec.Err.InstructionIndex)
}

func TestProcess_CreateThenWriteOwnedAccount(t *testing.T) {
	b := newBank(t)
	alice, target := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), 10*solana.LAMPORTS_PER_SOL)

	tx := signedTx(t, b, []solana.PrivateKey{alice},
		testIx(opCreate, solana.Meta(alice.PublicKey()).WRITE().SIGNER(), solana.Meta(target.PublicKey()).WRITE()),
		testIx(opWrite, solana.Meta(target.PublicKey()).WRITE()),
	)
	_, err := b.Process(tx)
	require.NoError(t, err)

	acc, ok := b.Account(target.PublicKey())
	require.True(t, ok)
	assert.True(t, acc.Owner.Equals(testProgramID))
	assert.Len(t, acc.Data, 16)
	assert.Equal(t, byte(1), acc.Data[0])
	assert.Equal(t, ledger.RentExemptMinimum(16), acc.Lamports)

	owned := b.ProgramAccounts(testProgramID)
	require.Len(t, owned, 1)
	assert.True(t, owned[0].Pubkey.Equals(target.PublicKey()))
}

func TestProcess_RuntimeChecks(t *testing.T) {
	b := newBank(t)
	alice, other := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), solana.LAMPORTS_PER_SOL)
	fund(t, b, other.PublicKey(), solana.LAMPORTS_PER_SOL)

	cases := []struct {
		name string
		ix   solana.Instruction
		want error
	}{
		{"write external account", testIx(opWrite, solana.Meta(other.PublicKey()).WRITE()), ledger.ErrExternalAccountDataModified},
		{"write read-only account", testIx(opWrite, solana.Meta(other.PublicKey())), ledger.ErrReadonlyDataModified},
		{"mint lamports", testIx(opMint, solana.Meta(other.PublicKey()).WRITE()), ledger.ErrUnbalancedInstruction},
		{"missing accounts", testIx(opWrite), ledger.ErrNotEnoughAccountKeys},
		{"create already used", testIx(opCreate, solana.Meta(alice.PublicKey()).WRITE().SIGNER(), solana.Meta(other.PublicKey()).WRITE()), ledger.ErrAccountAlreadyInUse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b.AdvanceSlot()
			_, err := b.Process(signedTx(t, b, []solana.PrivateKey{alice}, tc.ix))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProcess_SystemFailuresAreCustomCodes(t *testing.T) {
	b := newBank(t)
	alice, other, bob := newKey(t), newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), solana.LAMPORTS_PER_SOL)
	fund(t, b, other.PublicKey(), solana.LAMPORTS_PER_SOL)

	sig, err := b.Process(signedTx(t, b, []solana.PrivateKey{alice},
		testIx(opCreate, solana.Meta(alice.PublicKey()).WRITE().SIGNER(), solana.Meta(other.PublicKey()).WRITE())))
	assert.ErrorIs(t, err, ledger.ErrAccountAlreadyInUse)
	rec, ok := b.Status(sig)
	require.True(t, ok)
	require.NotNil(t, rec.Err)
	assert.Equal(t, "Custom", rec.Err.Kind)
	require.NotNil(t, rec.Err.Custom)
	assert.Equal(t, uint32(0), *rec.Err.Custom)
	assert.Contains(t, rec.Logs, "Program 11111111111111111111111111111111 invoke [2]")
	assert.Contains(t, rec.Logs, "Program 11111111111111111111111111111111 failed: custom program error: 0x0")

	b.AdvanceSlot()
	sig, err = b.Process(signedTx(t, b, []solana.PrivateKey{alice},
		system.NewTransferInstruction(2*solana.LAMPORTS_PER_SOL, alice.PublicKey(), bob.PublicKey()).Build()))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	rec, ok = b.Status(sig)
	require.True(t, ok)
	require.NotNil(t, rec.Err.Custom)
	assert.Equal(t, uint32(1), *rec.Err.Custom)

	se, ok := ledger.SystemErrorFromCode(1)
	require.True(t, ok)
	assert.Same(t, ledger.ErrInsufficientFunds, se)
	_, ok = ledger.SystemErrorFromCode(6000)
	assert.False(t, ok)
}

func TestProcess_SanitizeRejectsMalformedMessages(t *testing.T) {
	b := newBank(t)
	alice, bob := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), solana.LAMPORTS_PER_SOL)

	resign := func(tx *solana.Transaction) {
		tx.Signatures = nil
		_, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
			if k.Equals(alice.PublicKey()) {
				return &alice
			}
			return nil
		})
		require.NoError(t, err)
	}
	transfer := func() *solana.Transaction {
		return signedTx(t, b, []solana.PrivateKey{alice},
			system.NewTransferInstruction(1_000, alice.PublicKey(), bob.PublicKey()).Build())
	}

	readonlyPayer := transfer()
	readonlyPayer.Message.Header.NumReadonlySignedAccounts = 1
	resign(readonlyPayer)
	_, err := b.Process(readonlyPayer)
	assert.ErrorIs(t, err, ledger.ErrSanitizeFailure)

	dup := transfer()
	dup.Message.AccountKeys[1] = alice.PublicKey()
	resign(dup)
	_, err = b.Process(dup)
	assert.ErrorIs(t, err, ledger.ErrAccountLoadedTwice)
	_, err = b.Simulate(dup)
	assert.ErrorIs(t, err, ledger.ErrAccountLoadedTwice)

	assert.Equal(t, solana.LAMPORTS_PER_SOL, b.Balance(alice.PublicKey()))
}

func TestLatestBlockhash_LastValidHeight(t *testing.T) {
	b := newBank(t)
	hash, lastValid := b.LatestBlockhash()
	for b.Slot() < lastValid {
		b.AdvanceSlot()
	}
	assert.True(t, b.IsBlockhashValid(hash), "still accepted at its last valid height")
	b.AdvanceSlot()
	assert.False(t, b.IsBlockhashValid(hash))
}

func TestSimulate_DoesNotCommit(t *testing.T) {
	b := newBank(t)
	alice, bob := newKey(t), newKey(t)
	fund(t, b, alice.PublicKey(), 1_000_000)

	tx := signedTx(t, b, []solana.PrivateKey{alice},
		system.NewTransferInstruction(1_000, alice.PublicKey(), bob.PublicKey()).Build())
	res, err := b.Simulate(tx)
	require.NoError(t, err)
	assert.Nil(t, res.Err)
	assert.NotEmpty(t, res.Logs)
	assert.Zero(t, b.Balance(bob.PublicKey()))

	// The same transaction can still be processed afterwards.
	_, err = b.Process(tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), b.Balance(bob.PublicKey()))
}

func TestBank_RestoresFromSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	faucet := newKey(t)
	alice := newKey(t)

	b1 := newBank(t, ledger.WithStore(store.NewLedgerFileStore(dir)), ledger.WithFaucet(faucet, 1_000*solana.LAMPORTS_PER_SOL))
	sig, err := b1.Airdrop(alice.PublicKey(), 5_000_000)
	require.NoError(t, err)
	slot := b1.Slot()
	hash, _ := b1.LatestBlockhash()

	b2 := newBank(t, ledger.WithStore(store.NewLedgerFileStore(dir)), ledger.WithFaucet(faucet, 1_000*solana.LAMPORTS_PER_SOL))
	assert.Equal(t, slot, b2.Slot())
	assert.Equal(t, uint64(5_000_000), b2.Balance(alice.PublicKey()))
	assert.True(t, b2.IsBlockhashValid(hash))
	_, ok := b2.Status(sig)
	assert.True(t, ok)
}
