package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
)

// Program is the native processor registered with the cluster bank.
type Program struct {
	id solana.PublicKey
}

// New returns the voting program deployed at id.
func New(id solana.PublicKey) *Program { return &Program{id: id} }

// ID implements ledger.Program.
func (p *Program) ID() solana.PublicKey { return p.id }

// Process implements ledger.Program.
func (p *Program) Process(ctx *ledger.InvokeContext, data []byte) error {
	if len(data) < len(Discriminator{}) {
		return ErrInstructionMissing
	}
	var disc Discriminator
	copy(disc[:], data)
	args := data[len(disc):]

	switch disc {
	case InitializeDiscriminator:
		ctx.Log("Instruction: Initialize")
		return p.initialize(ctx)
	case CreateElectionDiscriminator:
		ctx.Log("Instruction: CreateElection")
		id, err := decodeCreateElectionArgs(args)
		if err != nil {
			return err
		}
		return p.createElection(ctx, id)
	case ApplyDiscriminator:
		ctx.Log("Instruction: Apply")
		return p.apply(ctx)
	case ChangeStageDiscriminator:
		ctx.Log("Instruction: ChangeStage")
		stage, err := decodeChangeStageArgs(args)
		if err != nil {
			return err
		}
		return p.changeStage(ctx, stage)
	case VoteDiscriminator:
		ctx.Log("Instruction: Vote")
		return p.vote(ctx)
	}
	return ErrInstructionFallbackNotFound
}

func (p *Program) initialize(ctx *ledger.InvokeContext) error {
	signer, err := signerAccount(ctx, 0, false)
	if err != nil {
		return err
	}
	ctx.Log("Greetings from: %s", signer.Key)
	return nil
}

func (p *Program) createElection(ctx *ledger.InvokeContext, electionID string) error {
	target, err := ctx.Account(0)
	if err != nil {
		return err
	}
	signer, err := signerAccount(ctx, 1, true)
	if err != nil {
		return err
	}
	if err := systemAccount(ctx, 2); err != nil {
		return err
	}
	if len(electionID) > MaxSeedLength {
		return ErrConstraintSeeds
	}
	if err := initAccount(ctx, target, signer, electionSeeds(electionID, signer.Key)); err != nil {
		return err
	}

	e := domain.ElectionData{
		ID:        electionID,
		Stage:     domain.StageApplication,
		Initiator: signer.Key,
	}
	if err := storeElection(target, e); err != nil {
		return err
	}
	ctx.Log("election %q created by %s", electionID, signer.Key)
	return nil
}

func (p *Program) apply(ctx *ledger.InvokeContext) error {
	target, err := ctx.Account(0)
	if err != nil {
		return err
	}
	electionAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	signer, err := signerAccount(ctx, 2, true)
	if err != nil {
		return err
	}
	if err := systemAccount(ctx, 3); err != nil {
		return err
	}
	if err := initAccount(ctx, target, signer, candidateSeeds(signer.Key, electionAcc.Key)); err != nil {
		return err
	}
	e, err := loadElection(ctx, electionAcc)
	if err != nil {
		return err
	}

	if e.Stage != domain.StageApplication {
		return ErrApplicationIsClosed
	}
	e.Candidates++
	c := domain.CandidateData{ID: e.Candidates, Pubkey: signer.Key}

	if err := storeElection(electionAcc, e); err != nil {
		return err
	}
	if err := storeCandidate(target, c); err != nil {
		return err
	}
	ctx.Log("candidate %d applied: %s", c.ID, c.Pubkey)
	return nil
}

func (p *Program) changeStage(ctx *ledger.InvokeContext, next domain.ElectionStage) error {
	electionAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	e, err := loadElection(ctx, electionAcc)
	if err != nil {
		return err
	}
	signer, err := signerAccount(ctx, 1, true)
	if err != nil {
		return err
	}
	if !signer.Key.Equals(e.Initiator) {
		return ErrWrongInitiator
	}

	if err := ChangeStage(&e, next); err != nil {
		return err
	}
	if err := storeElection(electionAcc, e); err != nil {
		return err
	}
	ctx.Log("election %q is now in %s stage", e.ID, e.Stage)
	return nil
}

func (p *Program) vote(ctx *ledger.InvokeContext) error {
	target, err := ctx.Account(0)
	if err != nil {
		return err
	}
	candidateAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	signer, err := signerAccount(ctx, 2, true)
	if err != nil {
		return err
	}
	electionAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	if err := systemAccount(ctx, 4); err != nil {
		return err
	}
	if err := initAccount(ctx, target, signer, voteSeeds(signer.Key, electionAcc.Key)); err != nil {
		return err
	}
	c, err := loadCandidate(ctx, candidateAcc)
	if err != nil {
		return err
	}
	e, err := loadElection(ctx, electionAcc)
	if err != nil {
		return err
	}

	if e.Stage != domain.StageVoting {
		return ErrNotVotingStage
	}
	expected, _, err := solana.FindProgramAddress(candidateSeeds(c.Pubkey, electionAcc.Key), ctx.ProgramID)
	if err != nil || !expected.Equals(candidateAcc.Key) {
		return ErrWrongPublicKey
	}

	c.Votes++
	RecordVote(&e, c.ID, c.Votes)

	if err := storeCandidate(candidateAcc, c); err != nil {
		return err
	}
	if err := storeMyVote(target, domain.MyVote{Pubkey: c.Pubkey}); err != nil {
		return err
	}
	if err := storeElection(electionAcc, e); err != nil {
		return err
	}
	ctx.Log("vote for candidate %d, now %d votes", c.ID, c.Votes)
	return nil
}
