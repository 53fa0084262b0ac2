package ledger

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

// systemProgram implements the subset of the system program the cluster needs.
type systemProgram struct{}

func (systemProgram) ID() solana.PublicKey { return solana.SystemProgramID }

func (systemProgram) Process(ctx *InvokeContext, data []byte) error {
	dec := bin.NewBinDecoder(data)
	tag, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return ErrInvalidInstructionData
	}
	switch tag {
	case systemCreateAccount:
		lamports, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return ErrInvalidInstructionData
		}
		space, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return ErrInvalidInstructionData
		}
		owner, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return ErrInvalidInstructionData
		}
		from, err := ctx.Account(0)
		if err != nil {
			return err
		}
		to, err := ctx.Account(1)
		if err != nil {
			return err
		}
		if !to.IsSigner {
			return ErrMissingRequiredSignature
		}
		return createAccount(from, to, lamports, space, solana.PublicKeyFromBytes(owner))

	case systemTransfer:
		lamports, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return ErrInvalidInstructionData
		}
		from, err := ctx.Account(0)
		if err != nil {
			return err
		}
		to, err := ctx.Account(1)
		if err != nil {
			return err
		}
		return transfer(from, to, lamports)
	}
	return ErrInvalidInstructionData
}

func transfer(from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if !from.IsWritable || !to.IsWritable {
		return ErrReadonlyLamportChange
	}
	if len(from.Data) > 0 || !from.Owner.Equals(solana.SystemProgramID) {
		return ErrInvalidArgument
	}
	if from.Lamports < lamports {
		return ErrInsufficientFunds
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
