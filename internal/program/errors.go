package program

import "fmt"

// Error is a program failure surfaced to clients as a custom error code.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// CustomCode is the code reported in "custom program error: 0x..".
func (e *Error) CustomCode() uint32 { return e.Code }

// Election errors.
var (
	ErrApplicationIsClosed = &Error{6000, "ApplicationIsClosed", "The application is closed"}
	ErrWrongPublicKey      = &Error{6001, "WrongPublicKey", "The publicKey does not match"}
	ErrWrongInitiator      = &Error{6002, "WrongInitiator", "You are not Initiator"}
	ErrNotVotingStage      = &Error{6003, "NotVotingStage", "Not at votingStage"}
	ErrVotingEnded         = &Error{6004, "VotingEnded", "Voting stage has ended"}
)

// Account and instruction validation errors.
var (
	ErrInstructionMissing           = &Error{100, "InstructionMissing", "8 byte instruction identifier not provided"}
	ErrInstructionFallbackNotFound  = &Error{101, "InstructionFallbackNotFound", "Fallback functions are not supported"}
	ErrInstructionDidNotDeserialize = &Error{102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction"}
	ErrConstraintMut                = &Error{2000, "ConstraintMut", "A mut constraint was violated"}
	ErrConstraintSeeds              = &Error{2006, "ConstraintSeeds", "A seeds constraint was violated"}
	ErrAccountDiscriminatorNotFound = &Error{3001, "AccountDiscriminatorNotFound", "No 8 byte discriminator was found on the account"}
	ErrAccountDiscriminatorMismatch = &Error{3002, "AccountDiscriminatorMismatch", "8 byte discriminator did not match what was expected"}
	ErrAccountDidNotDeserialize     = &Error{3003, "AccountDidNotDeserialize", "Failed to deserialize the account"}
	ErrAccountDidNotSerialize       = &Error{3004, "AccountDidNotSerialize", "Failed to serialize the account"}
	ErrAccountOwnedByWrongProgram   = &Error{3007, "AccountOwnedByWrongProgram", "The given account is owned by a different program than expected"}
	ErrInvalidProgramID             = &Error{3008, "InvalidProgramId", "Program ID was not as expected"}
	ErrAccountNotSigner             = &Error{3010, "AccountNotSigner", "The given account did not sign"}
	ErrAccountNotInitialized        = &Error{3012, "AccountNotInitialized", "The program expected this account to be already initialized"}
)

var errorsByCode = map[uint32]*Error{}

func init() {
	for _, e := range []*Error{
		ErrApplicationIsClosed, ErrWrongPublicKey, ErrWrongInitiator,
		ErrNotVotingStage, ErrVotingEnded,
		ErrInstructionMissing, ErrInstructionFallbackNotFound, ErrInstructionDidNotDeserialize,
		ErrConstraintMut, ErrConstraintSeeds,
		ErrAccountDiscriminatorNotFound, ErrAccountDiscriminatorMismatch,
		ErrAccountDidNotDeserialize, ErrAccountDidNotSerialize,
		ErrAccountOwnedByWrongProgram, ErrInvalidProgramID,
		ErrAccountNotSigner, ErrAccountNotInitialized,
	} {
		errorsByCode[e.Code] = e
	}
}

// ErrorFromCode returns the program error registered for code.
func ErrorFromCode(code uint32) (*Error, bool) {
	e, ok := errorsByCode[code]
	return e, ok
}
