package ledger

import (
	"errors"
	"fmt"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

// Error is a runtime failure with a cluster-visible kind.
type Error struct {
	Kind string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Transaction-level errors.
var (
	ErrSignatureFailure        = &Error{"SignatureFailure", "transaction signature verification failure"}
	ErrSanitizeFailure         = &Error{"SanitizeFailure", "transaction failed to sanitize accounts offsets correctly"}
	ErrAlreadyProcessed        = &Error{"AlreadyProcessed", "this transaction has already been processed"}
	ErrBlockhashNotFound       = &Error{"BlockhashNotFound", "blockhash not found"}
	ErrInsufficientFundsForFee = &Error{"InsufficientFundsForFee", "insufficient funds for fee"}
	ErrProgramAccountNotFound  = &Error{"ProgramAccountNotFound", "attempt to load a program that does not exist"}
	ErrAccountLoadedTwice      = &Error{"AccountLoadedTwice", "account loaded twice"}
)

// Instruction-level errors.
var (
	ErrMissingRequiredSignature    = &Error{"MissingRequiredSignature", "missing required signature for instruction"}
	ErrReadonlyDataModified        = &Error{"ReadonlyDataModified", "instruction modified data of a read-only account"}
	ErrReadonlyLamportChange       = &Error{"ReadonlyLamportChange", "instruction changed the balance of a read-only account"}
	ErrExternalAccountDataModified = &Error{"ExternalAccountDataModified", "instruction modified data of an account it does not own"}
	ErrUnbalancedInstruction       = &Error{"UnbalancedInstruction", "sum of account balances before and after instruction do not match"}
	ErrInvalidInstructionData      = &Error{"InvalidInstructionData", "invalid instruction data"}
	ErrInvalidArgument             = &Error{"InvalidArgument", "invalid program argument"}
	ErrNotEnoughAccountKeys        = &Error{"NotEnoughAccountKeys", "insufficient account keys for instruction"}
)

// SystemError is a failure of the system program. It reaches the cluster as
// a custom error code, like any other program error.
type SystemError struct {
	Code uint32
	Name string
	msg  string
}

func (e *SystemError) Error() string { return e.msg }

// CustomCode is the code reported in "custom program error: 0x..".
func (e *SystemError) CustomCode() uint32 { return e.Code }

// System program errors.
var (
	ErrAccountAlreadyInUse      = &SystemError{0, "AccountAlreadyInUse", "an account with the same address already exists"}
	ErrInsufficientFunds        = &SystemError{1, "ResultWithNegativeLamports", "account does not have enough SOL to perform the operation"}
	ErrInvalidAccountDataLength = &SystemError{3, "InvalidAccountDataLength", "cannot allocate account data of this length"}
)

var systemErrorsByCode = map[uint32]*SystemError{
	ErrAccountAlreadyInUse.Code:      ErrAccountAlreadyInUse,
	ErrInsufficientFunds.Code:        ErrInsufficientFunds,
	ErrInvalidAccountDataLength.Code: ErrInvalidAccountDataLength,
}

// SystemErrorFromCode returns the system program error for a custom code.
func SystemErrorFromCode(code uint32) (*SystemError, bool) {
	e, ok := systemErrorsByCode[code]
	return e, ok
}

// CustomError is implemented by program-defined errors carrying a numeric code.
type CustomError interface {
	error
	CustomCode() uint32
}

// InstructionError wraps a failure raised while executing instruction Index.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %s", e.Index, instructionErrorText(e.Err))
}

func (e *InstructionError) Unwrap() error { return e.Err }

func instructionErrorText(err error) string {
	var ce CustomError
	if errors.As(err, &ce) {
		return fmt.Sprintf("custom program error: 0x%x", ce.CustomCode())
	}
	return err.Error()
}

// TransactionErrorFrom converts an execution error into its recorded form.
func TransactionErrorFrom(err error) *domain.TransactionError {
	if err == nil {
		return nil
	}
	te := &domain.TransactionError{Message: err.Error()}

	var ie *InstructionError
	if errors.As(err, &ie) {
		idx := ie.Index
		te.InstructionIndex = &idx
		err = ie.Err
	}

	var ce CustomError
	var le *Error
	switch {
	case errors.As(err, &ce):
		code := ce.CustomCode()
		te.Kind = "Custom"
		te.Custom = &code
	case errors.As(err, &le):
		te.Kind = le.Kind
	default:
		te.Kind = "GenericError"
	}
	return te
}

var errorsByKind = map[string]*Error{}

func init() {
	for _, e := range []*Error{
		ErrSignatureFailure, ErrSanitizeFailure, ErrAlreadyProcessed, ErrBlockhashNotFound,
		ErrInsufficientFundsForFee, ErrProgramAccountNotFound, ErrAccountLoadedTwice,
		ErrMissingRequiredSignature, ErrReadonlyDataModified, ErrReadonlyLamportChange,
		ErrExternalAccountDataModified, ErrUnbalancedInstruction, ErrInvalidInstructionData,
		ErrInvalidArgument, ErrNotEnoughAccountKeys,
	} {
		errorsByKind[e.Kind] = e
	}
}

// ErrorFromKind returns the runtime error registered under kind.
func ErrorFromKind(kind string) (*Error, bool) {
	e, ok := errorsByKind[kind]
	return e, ok
}
