package election

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/program"
	"github.com/FME849/wsos23-voting-app/internal/rpc"
)

var (
	// ErrProgramNotDeployed is returned when the program account is missing
	// or not executable.
	ErrProgramNotDeployed = errors.New("program is not deployed on this cluster")

	// ErrAccountNotFound is returned when a program account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBlockhashExpired is returned when a transaction was not confirmed
	// before its blockhash left the recent window.
	ErrBlockhashExpired = errors.New("transaction expired before confirmation")
)

const defaultPollInterval = 200 * time.Millisecond

// Service submits voting program instructions signed by one payer.
type Service struct {
	client        domain.ClusterClient
	programID     solana.PublicKey
	payer         solana.PrivateKey
	log           zerolog.Logger
	poll          time.Duration
	skipPreflight bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithPollInterval sets how often signature statuses are polled.
func WithPollInterval(d time.Duration) Option { return func(s *Service) { s.poll = d } }

// WithSkipPreflight submits without a preflight simulation.
func WithSkipPreflight(skip bool) Option { return func(s *Service) { s.skipPreflight = skip } }

// New returns a handle for the program at programID.
func New(client domain.ClusterClient, programID solana.PublicKey, payer solana.PrivateKey, opts ...Option) *Service {
	s := &Service{
		client:    client,
		programID: programID,
		payer:     payer,
		log:       zerolog.Nop(),
		poll:      defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProgramID returns the program address.
func (s *Service) ProgramID() solana.PublicKey { return s.programID }

// Payer returns the address signing and paying for transactions.
func (s *Service) Payer() solana.PublicKey { return s.payer.PublicKey() }

// EnsureDeployed checks that the program account exists and is executable.
func (s *Service) EnsureDeployed(ctx context.Context) error {
	acc, err := s.client.GetAccountInfo(ctx, s.programID)
	if err != nil {
		return err
	}
	if acc == nil || !acc.Executable {
		return fmt.Errorf("%w: %s", ErrProgramNotDeployed, s.programID)
	}
	return nil
}

// Initialize calls the argument-less initialize instruction.
func (s *Service) Initialize(ctx context.Context) (solana.Signature, error) {
	return s.send(ctx, program.NewInitializeInstruction(s.programID, s.Payer()))
}

// CreateElection creates election electionID with the payer as initiator.
func (s *Service) CreateElection(ctx context.Context, electionID string) (solana.Signature, solana.PublicKey, error) {
	ix, addr, err := program.NewCreateElectionInstruction(s.programID, electionID, s.Payer())
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := s.send(ctx, ix)
	return sig, addr, err
}

// Apply registers the payer as a candidate of election.
func (s *Service) Apply(ctx context.Context, election solana.PublicKey) (solana.Signature, solana.PublicKey, error) {
	ix, addr, err := program.NewApplyInstruction(s.programID, election, s.Payer())
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := s.send(ctx, ix)
	return sig, addr, err
}

// ChangeStage moves election to stage. Only the initiator may do this.
func (s *Service) ChangeStage(ctx context.Context, election solana.PublicKey, stage domain.ElectionStage) (solana.Signature, error) {
	return s.send(ctx, program.NewChangeStageInstruction(s.programID, election, s.Payer(), stage))
}

// Vote casts the payer's vote for candidate in election.
func (s *Service) Vote(ctx context.Context, election, candidate solana.PublicKey) (solana.Signature, solana.PublicKey, error) {
	ix, addr, err := program.NewVoteInstruction(s.programID, election, candidate, s.Payer())
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := s.send(ctx, ix)
	return sig, addr, err
}

// Election fetches and decodes an election account.
func (s *Service) Election(ctx context.Context, election solana.PublicKey) (domain.ElectionData, error) {
	data, err := s.accountData(ctx, election)
	if err != nil {
		return domain.ElectionData{}, err
	}
	return program.DecodeElection(data)
}

// Candidate fetches and decodes a candidate account.
func (s *Service) Candidate(ctx context.Context, candidate solana.PublicKey) (domain.CandidateData, error) {
	data, err := s.accountData(ctx, candidate)
	if err != nil {
		return domain.CandidateData{}, err
	}
	return program.DecodeCandidate(data)
}

// Candidates lists the candidates of election ordered by candidate ID.
func (s *Service) Candidates(ctx context.Context, election solana.PublicKey) ([]domain.Candidate, error) {
	accounts, err := s.client.GetProgramAccounts(ctx, s.programID, domain.MemcmpFilter{
		Offset: 0,
		Bytes:  program.CandidateDataDiscriminator[:],
	})
	if err != nil {
		return nil, err
	}

	var out []domain.Candidate
	for _, ka := range accounts {
		c, err := program.DecodeCandidate(ka.Account.Data)
		if err != nil {
			s.log.Debug().Err(err).Str("account", ka.Pubkey.String()).Msg("skip undecodable candidate")
			continue
		}
		want, _, err := program.CandidateAddress(s.programID, c.Pubkey, election)
		if err != nil || !want.Equals(ka.Pubkey) {
			continue
		}
		out = append(out, domain.Candidate{Address: ka.Pubkey, CandidateData: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MyVote returns the payer's vote receipt for election.
func (s *Service) MyVote(ctx context.Context, election solana.PublicKey) (domain.MyVote, error) {
	addr, _, err := program.VoteAddress(s.programID, s.Payer(), election)
	if err != nil {
		return domain.MyVote{}, err
	}
	data, err := s.accountData(ctx, addr)
	if err != nil {
		return domain.MyVote{}, err
	}
	return program.DecodeMyVote(data)
}

func (s *Service) accountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	acc, err := s.client.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if !acc.Owner.Equals(s.programID) {
		return nil, program.ErrAccountOwnedByWrongProgram
	}
	return acc.Data, nil
}

// send signs ixs with the payer, submits once and waits for confirmation.
func (s *Service) send(ctx context.Context, ixs ...solana.Instruction) (solana.Signature, error) {
	hash, lastValid, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("latest blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(ixs, hash, solana.TransactionPayer(s.Payer()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.Payer()) {
			return &s.payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := s.client.SendTransaction(ctx, tx, s.skipPreflight)
	if err != nil {
		return solana.Signature{}, err
	}
	s.log.Debug().Str("signature", sig.String()).Msg("transaction sent")

	if err := s.confirm(ctx, sig, lastValid); err != nil {
		return sig, err
	}
	return sig, nil
}

func (s *Service) confirm(ctx context.Context, sig solana.Signature, lastValid uint64) error {
	t := time.NewTicker(s.poll)
	defer t.Stop()
	for {
		st, err := s.client.GetSignatureStatus(ctx, sig)
		if err != nil {
			return fmt.Errorf("signature status: %w", err)
		}
		if st != nil {
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed: %w", sig, rpc.Cause(st.Err, s.failureLogs(ctx, sig)))
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				s.log.Debug().Str("signature", sig.String()).Uint64("slot", st.Slot).Msg("transaction confirmed")
				return nil
			}
		} else {
			slot, err := s.client.GetSlot(ctx)
			if err != nil {
				return fmt.Errorf("current slot: %w", err)
			}
			if slot > lastValid {
				return fmt.Errorf("%w: %s", ErrBlockhashExpired, sig)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// failureLogs fetches the logs of a failed transaction. They name the
// program that raised a custom error code.
func (s *Service) failureLogs(ctx context.Context, sig solana.Signature) []string {
	rec, err := s.client.GetTransaction(ctx, sig)
	if err != nil || rec == nil {
		s.log.Debug().Err(err).Str("signature", sig.String()).Msg("no logs for failed transaction")
		return nil
	}
	return rec.Logs
}

// Compile-time assertion that Service implements domain.ElectionService.
var _ domain.ElectionService = (*Service)(nil)
