package program

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

// Instruction discriminators.
var (
	InitializeDiscriminator     = discriminator("global", "initialize")
	CreateElectionDiscriminator = discriminator("global", "create_election")
	ApplyDiscriminator          = discriminator("global", "apply")
	ChangeStageDiscriminator    = discriminator("global", "change_stage")
	VoteDiscriminator           = discriminator("global", "vote")
)

// NewInitializeInstruction builds the argument-less initialize call.
func NewInitializeInstruction(programID, signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{solana.NewAccountMeta(signer, false, true)},
		InitializeDiscriminator[:],
	)
}

// NewCreateElectionInstruction builds create_election and returns the
// election address it initialises.
func NewCreateElectionInstruction(programID solana.PublicKey, electionID string, signer solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	election, _, err := ElectionAddress(programID, electionID, signer)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(CreateElectionDiscriminator[:], false); err != nil {
		return nil, solana.PublicKey{}, err
	}
	if err := writeString(enc, electionID); err != nil {
		return nil, solana.PublicKey{}, err
	}

	ix := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(election, true, false),
		solana.NewAccountMeta(signer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, buf.Bytes())
	return ix, election, nil
}

// NewApplyInstruction builds apply for signer and returns the candidate
// address it initialises.
func NewApplyInstruction(programID, election, signer solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	candidate, _, err := CandidateAddress(programID, signer, election)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	ix := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(candidate, true, false),
		solana.NewAccountMeta(election, true, false),
		solana.NewAccountMeta(signer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, ApplyDiscriminator[:])
	return ix, candidate, nil
}

// NewChangeStageInstruction builds change_stage moving election to stage.
func NewChangeStageInstruction(programID, election, signer solana.PublicKey, stage domain.ElectionStage) solana.Instruction {
	data := make([]byte, 0, len(ChangeStageDiscriminator)+1)
	data = append(data, ChangeStageDiscriminator[:]...)
	data = append(data, byte(stage))
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(election, true, false),
		solana.NewAccountMeta(signer, true, true),
	}, data)
}

// NewVoteInstruction builds vote for candidate and returns the vote receipt
// address it initialises.
func NewVoteInstruction(programID, election, candidate, signer solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	myVote, _, err := VoteAddress(programID, signer, election)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	ix := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(myVote, true, false),
		solana.NewAccountMeta(candidate, true, false),
		solana.NewAccountMeta(signer, true, true),
		solana.NewAccountMeta(election, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, VoteDiscriminator[:])
	return ix, myVote, nil
}

func decodeCreateElectionArgs(args []byte) (string, error) {
	id, err := readString(bin.NewBorshDecoder(args))
	if err != nil {
		return "", ErrInstructionDidNotDeserialize
	}
	return id, nil
}

func decodeChangeStageArgs(args []byte) (domain.ElectionStage, error) {
	dec := bin.NewBorshDecoder(args)
	v, err := dec.ReadUint8()
	if err != nil || !domain.ElectionStage(v).Valid() {
		return 0, ErrInstructionDidNotDeserialize
	}
	return domain.ElectionStage(v), nil
}
