package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
)

var (
	nativeLoaderID         = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")
	bpfLoaderUpgradeableID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
)

// Bank holds ledger state and processes transactions. It is safe for
// concurrent use.
type Bank struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*domain.Account
	programs map[solana.PublicKey]Program
	queue    blockhashQueue
	slot     uint64
	statuses map[solana.Signature]domain.TransactionRecord

	faucet         solana.PrivateKey
	faucetLamports uint64

	store domain.LedgerStore
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Bank.
type Option func(*Bank)

// WithStore persists a snapshot after every committed transaction and
// restores from it on start.
func WithStore(s domain.LedgerStore) Option { return func(b *Bank) { b.store = s } }

// WithLogger sets the bank logger.
func WithLogger(l zerolog.Logger) Option { return func(b *Bank) { b.log = l } }

// WithProgram registers a native program.
func WithProgram(p Program) Option { return func(b *Bank) { b.programs[p.ID()] = p } }

// WithFaucet sets the faucet keypair and its genesis balance.
func WithFaucet(key solana.PrivateKey, lamports uint64) Option {
	return func(b *Bank) {
		b.faucet = key
		b.faucetLamports = lamports
	}
}

// WithClock overrides the wall clock used for block times.
func WithClock(now func() time.Time) Option { return func(b *Bank) { b.now = now } }

// DefaultFaucetLamports funds the faucet at genesis.
const DefaultFaucetLamports = 500_000_000 * domain.LamportsPerSOL

// New creates a bank, restoring from the store when a snapshot exists.
func New(opts ...Option) (*Bank, error) {
	b := &Bank{
		accounts:       make(map[solana.PublicKey]*domain.Account),
		programs:       make(map[solana.PublicKey]Program),
		statuses:       make(map[solana.Signature]domain.TransactionRecord),
		faucetLamports: DefaultFaucetLamports,
		log:            zerolog.Nop(),
		now:            time.Now,
	}
	b.programs[solana.SystemProgramID] = systemProgram{}
	for _, opt := range opts {
		opt(b)
	}
	if b.faucet == nil {
		key, _, err := crypto.GenerateKeypair()
		if err != nil {
			return nil, err
		}
		b.faucet = key
	}

	restored := false
	if b.store != nil {
		snap, ok, err := b.store.LoadSnapshot()
		if err != nil {
			return nil, fmt.Errorf("load ledger snapshot: %w", err)
		}
		if ok {
			if err := b.restore(snap); err != nil {
				return nil, fmt.Errorf("restore ledger snapshot: %w", err)
			}
			restored = true
		}
	}
	if !restored {
		b.queue.push(genesisBlockhash(), 0)
		b.accounts[b.faucet.PublicKey()] = &domain.Account{
			Lamports: b.faucetLamports,
			Owner:    solana.SystemProgramID,
		}
	}
	for id := range b.programs {
		if _, ok := b.accounts[id]; ok {
			continue
		}
		loader := bpfLoaderUpgradeableID
		if id.Equals(solana.SystemProgramID) {
			loader = nativeLoaderID
		}
		b.accounts[id] = &domain.Account{Lamports: 1, Owner: loader, Executable: true}
	}

	b.log.Info().
		Uint64("slot", b.slot).
		Bool("restored", restored).
		Int("programs", len(b.programs)).
		Str("faucet", b.faucet.PublicKey().String()).
		Msg("bank ready")
	return b, nil
}

// Faucet returns the faucet address.
func (b *Bank) Faucet() solana.PublicKey { return b.faucet.PublicKey() }

// Slot returns the current slot.
func (b *Bank) Slot() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slot
}

// LatestBlockhash returns the newest blockhash and the last block height at
// which it is still accepted. The queue holds MaxRecentBlockhashes entries,
// so a hash published at slot s is evicted when slot s+MaxRecentBlockhashes
// is reached.
func (b *Bank) LatestBlockhash() (solana.Hash, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e := b.queue.latest()
	return e.hash, e.slot + MaxRecentBlockhashes - 1
}

// IsBlockhashValid reports whether h is still in the recent blockhash queue.
func (b *Bank) IsBlockhashValid(h solana.Hash) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue.contains(h)
}

// AdvanceSlot moves to the next slot and publishes a new blockhash.
func (b *Bank) AdvanceSlot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advanceLocked()
}

func (b *Bank) advanceLocked() uint64 {
	prev := b.queue.latest().hash
	b.slot++
	b.queue.push(nextBlockhash(prev, b.slot), b.slot)
	return b.slot
}

// Run advances the slot every interval until ctx is done.
func (b *Bank) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			b.AdvanceSlot()
		}
	}
}

// Account returns a copy of the account at pk.
func (b *Bank) Account(pk solana.PublicKey) (domain.Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, ok := b.accounts[pk]
	if !ok {
		return domain.Account{}, false
	}
	return acc.Clone(), true
}

// Balance returns the lamports held by pk (zero when absent).
func (b *Bank) Balance(pk solana.PublicKey) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if acc, ok := b.accounts[pk]; ok {
		return acc.Lamports
	}
	return 0
}

// ProgramAccounts returns accounts owned by owner matching every filter,
// ordered by address.
func (b *Bank) ProgramAccounts(owner solana.PublicKey, filters ...domain.MemcmpFilter) []domain.KeyedAccount {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []domain.KeyedAccount
	for pk, acc := range b.accounts {
		if !acc.Owner.Equals(owner) || !matches(acc.Data, filters) {
			continue
		}
		out = append(out, domain.KeyedAccount{Pubkey: pk, Account: acc.Clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pubkey.String() < out[j].Pubkey.String() })
	return out
}

func matches(data []byte, filters []domain.MemcmpFilter) bool {
	for _, f := range filters {
		end := f.Offset + uint64(len(f.Bytes))
		if end > uint64(len(data)) || !bytes.Equal(data[f.Offset:end], f.Bytes) {
			return false
		}
	}
	return true
}

// Status returns the record for a processed signature.
func (b *Bank) Status(sig solana.Signature) (domain.TransactionRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.statuses[sig]
	return rec, ok
}

// Process verifies, executes and records tx. A returned error with a
// non-zero signature means the transaction was recorded as failed and its
// fee was charged.
func (b *Bank) Process(tx *solana.Transaction) (solana.Signature, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sig, err := b.sanitize(tx)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, seen := b.statuses[sig]; seen {
		return solana.Signature{}, ErrAlreadyProcessed
	}

	ex, execErr := b.execute(tx)
	if ex == nil {
		return solana.Signature{}, execErr
	}
	if execErr == nil {
		b.commit(ex.accounts)
	} else {
		b.accounts[ex.payer].Lamports -= ex.fee
	}

	rec := domain.TransactionRecord{
		Signature: sig.String(),
		Slot:      b.slot,
		BlockTime: b.now().Unix(),
		Fee:       ex.fee,
		Err:       TransactionErrorFrom(execErr),
		Logs:      ex.logs,
	}
	b.statuses[sig] = rec
	b.persistLocked()

	ev := b.log.Debug()
	if execErr != nil {
		ev = b.log.Info().Err(execErr)
	}
	ev.Str("signature", sig.String()).
		Str("payer", crypto.ShortAddress(tx.Message.AccountKeys[0].String())).
		Uint64("slot", b.slot).
		Uint64("fee", ex.fee).
		Int("instructions", len(tx.Message.Instructions)).
		Msg("transaction processed")

	if execErr != nil {
		return sig, execErr
	}
	return sig, nil
}

// Simulate executes tx without committing anything.
func (b *Bank) Simulate(tx *solana.Transaction) (domain.SimulationResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, err := b.sanitize(tx); err != nil {
		return domain.SimulationResult{}, err
	}
	ex, err := b.execute(tx)
	res := domain.SimulationResult{Err: TransactionErrorFrom(err)}
	if ex != nil {
		res.Logs = ex.logs
	}
	return res, nil
}

func (b *Bank) sanitize(tx *solana.Transaction) (solana.Signature, error) {
	msg := &tx.Message
	n := int(msg.Header.NumRequiredSignatures)
	if n == 0 || len(tx.Signatures) != n || len(msg.AccountKeys) < n {
		return solana.Signature{}, ErrSanitizeFailure
	}
	// The fee payer must be writable.
	if int(msg.Header.NumReadonlySignedAccounts) >= n ||
		n+int(msg.Header.NumReadonlyUnsignedAccounts) > len(msg.AccountKeys) {
		return solana.Signature{}, ErrSanitizeFailure
	}
	seen := make(map[solana.PublicKey]struct{}, len(msg.AccountKeys))
	for _, k := range msg.AccountKeys {
		if _, dup := seen[k]; dup {
			return solana.Signature{}, ErrAccountLoadedTwice
		}
		seen[k] = struct{}{}
	}
	content, err := msg.MarshalBinary()
	if err != nil {
		return solana.Signature{}, ErrSanitizeFailure
	}
	for i := 0; i < n; i++ {
		if !crypto.Verify(msg.AccountKeys[i], content, tx.Signatures[i]) {
			return solana.Signature{}, ErrSignatureFailure
		}
	}
	if !b.queue.contains(msg.RecentBlockhash) {
		return solana.Signature{}, ErrBlockhashNotFound
	}
	return tx.Signatures[0], nil
}

// execution is the working state of one transaction.
type execution struct {
	payer    solana.PublicKey
	fee      uint64
	accounts map[solana.PublicKey]*domain.Account
	logs     []string
}

func (ex *execution) load(b *Bank, pk solana.PublicKey) *domain.Account {
	if acc, ok := ex.accounts[pk]; ok {
		return acc
	}
	acc := &domain.Account{Owner: solana.SystemProgramID}
	if cur, ok := b.accounts[pk]; ok {
		c := cur.Clone()
		acc = &c
	}
	ex.accounts[pk] = acc
	return acc
}

// execute runs every instruction of tx on working copies. It returns a nil
// execution only when the fee cannot be paid.
func (b *Bank) execute(tx *solana.Transaction) (*execution, error) {
	msg := &tx.Message
	keys := msg.AccountKeys
	ex := &execution{
		payer:    keys[0],
		fee:      FeePerSignature * uint64(len(tx.Signatures)),
		accounts: make(map[solana.PublicKey]*domain.Account),
	}
	payer := ex.load(b, ex.payer)
	if payer.Lamports < ex.fee {
		return nil, ErrInsufficientFundsForFee
	}
	payer.Lamports -= ex.fee

	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(keys) {
			return ex, ErrSanitizeFailure
		}
		pid := keys[ci.ProgramIDIndex]
		prog, ok := b.programs[pid]
		if !ok {
			return ex, ErrProgramAccountNotFound
		}

		infos := make([]*AccountInfo, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			if int(idx) >= len(keys) {
				return ex, ErrSanitizeFailure
			}
			k := keys[idx]
			infos = append(infos, &AccountInfo{
				Key:        k,
				IsSigner:   int(idx) < int(msg.Header.NumRequiredSignatures),
				IsWritable: isWritable(msg.Header, int(idx), len(keys)),
				Account:    ex.load(b, k),
			})
		}

		pre := capture(infos)
		ex.logs = append(ex.logs, fmt.Sprintf("Program %s invoke [1]", pid))
		ictx := &InvokeContext{ProgramID: pid, Accounts: infos, Slot: b.slot, logs: &ex.logs}
		err := prog.Process(ictx, []byte(ci.Data))
		if err == nil {
			err = verifyInstruction(pid, infos, pre)
		}
		if err != nil {
			ex.logs = append(ex.logs, fmt.Sprintf("Program %s failed: %s", pid, instructionErrorText(err)))
			return ex, &InstructionError{Index: i, Err: err}
		}
		ex.logs = append(ex.logs, fmt.Sprintf("Program %s success", pid))
	}
	return ex, nil
}

// isWritable applies the legacy message header layout: writable signers,
// read-only signers, writable non-signers, read-only non-signers.
func isWritable(h solana.MessageHeader, i, n int) bool {
	signed := int(h.NumRequiredSignatures)
	if i < signed {
		return i < signed-int(h.NumReadonlySignedAccounts)
	}
	return i < n-int(h.NumReadonlyUnsignedAccounts)
}

func (b *Bank) commit(accounts map[solana.PublicKey]*domain.Account) {
	for pk, acc := range accounts {
		if acc.Lamports == 0 && len(acc.Data) == 0 && !acc.Executable {
			delete(b.accounts, pk)
			continue
		}
		b.accounts[pk] = acc
	}
}
