package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
	"github.com/FME849/wsos23-voting-app/internal/program"
)

// JSON-RPC error codes.
const (
	CodeParseError               = -32700
	CodeInvalidRequest           = -32600
	CodeMethodNotFound           = -32601
	CodeInvalidParams            = -32602
	CodeInternalError            = -32603
	CodeSendTransactionPreflight = -32002
	CodeSignatureVerification    = -32003
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// TransactionError returns the failure carried in the data of a preflight
// error, or nil.
func (e *Error) TransactionError() *domain.TransactionError {
	if len(e.Data) == 0 {
		return nil
	}
	var sim simulationJSON
	if err := json.Unmarshal(e.Data, &sim); err != nil {
		return nil
	}
	te, err := decodeTxError(sim.Err)
	if err != nil {
		return nil
	}
	return te
}

// Logs returns the program logs of a failed preflight simulation.
func (e *Error) Logs() []string {
	var sim simulationJSON
	if len(e.Data) == 0 || json.Unmarshal(e.Data, &sim) != nil {
		return nil
	}
	return sim.Logs
}

// Unwrap exposes the ledger or program error behind a transaction failure.
func (e *Error) Unwrap() error {
	if e.Code == CodeSignatureVerification {
		return ledger.ErrSignatureFailure
	}
	if te := e.TransactionError(); te != nil {
		return Cause(te, e.Logs())
	}
	return nil
}

func newError(code int, msg string) *Error { return &Error{Code: code, Message: msg} }

func invalidParams(format string, args ...any) *Error {
	return newError(CodeInvalidParams, "Invalid params: "+fmt.Sprintf(format, args...))
}

func preflightError(res domain.SimulationResult) *Error {
	msg := "Transaction simulation failed"
	if res.Err != nil {
		msg += ": " + res.Err.Error()
	}
	data, _ := json.Marshal(toSimulationJSON(res))
	return &Error{Code: CodeSendTransactionPreflight, Message: msg, Data: data}
}

// Cause maps a recorded transaction failure to the matching sentinel error.
// A custom code is looked up in the table of the program that failed, as
// named by the first "Program <id> failed" line of logs. Without logs only
// the voting program's codes are known. Unknown failures are returned as is.
func Cause(te *domain.TransactionError, logs []string) error {
	if te == nil {
		return nil
	}
	var cause error
	switch {
	case te.Custom == nil:
		if le, ok := ledger.ErrorFromKind(te.Kind); ok {
			cause = le
		}
	case failingProgram(logs).Equals(solana.SystemProgramID):
		if se, ok := ledger.SystemErrorFromCode(*te.Custom); ok {
			cause = se
		}
	default:
		if pe, ok := program.ErrorFromCode(*te.Custom); ok {
			cause = pe
		}
	}
	if cause == nil {
		return te
	}
	return &causeError{te: te, cause: cause}
}

// failingProgram returns the program of the first "Program <id> failed"
// log line, or the zero key.
func failingProgram(logs []string) solana.PublicKey {
	for _, line := range logs {
		rest, ok := strings.CutPrefix(line, "Program ")
		if !ok {
			continue
		}
		id, tail, ok := strings.Cut(rest, " ")
		if !ok || !strings.HasPrefix(tail, "failed") {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			continue
		}
		return pk
	}
	return solana.PublicKey{}
}

// causeError keeps the cluster's message while unwrapping to the sentinel.
type causeError struct {
	te    *domain.TransactionError
	cause error
}

func (e *causeError) Error() string { return e.te.Error() + ": " + e.cause.Error() }
func (e *causeError) Unwrap() error { return e.cause }

// encodeTxError renders te the way the Solana API does: a bare kind string,
// or {"InstructionError": [index, kind | {"Custom": code}]}.
func encodeTxError(te *domain.TransactionError) json.RawMessage {
	if te == nil {
		return json.RawMessage("null")
	}
	var v any = te.Kind
	if te.InstructionIndex != nil {
		var inner any = te.Kind
		if te.Custom != nil {
			inner = map[string]uint32{"Custom": *te.Custom}
		}
		v = map[string][]any{"InstructionError": {*te.InstructionIndex, inner}}
	}
	b, _ := json.Marshal(v)
	return b
}

func decodeTxError(raw json.RawMessage) (*domain.TransactionError, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var kind string
	if err := json.Unmarshal(raw, &kind); err == nil {
		return &domain.TransactionError{Kind: kind, Message: kindMessage(kind)}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode transaction error: %w", err)
	}
	ie, ok := obj["InstructionError"]
	if !ok {
		for k := range obj {
			return &domain.TransactionError{Kind: k, Message: kindMessage(k)}, nil
		}
		return nil, errors.New("decode transaction error: empty object")
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(ie, &pair); err != nil || len(pair) != 2 {
		return nil, fmt.Errorf("decode instruction error %s", ie)
	}
	var idx int
	if err := json.Unmarshal(pair[0], &idx); err != nil {
		return nil, fmt.Errorf("decode instruction index: %w", err)
	}
	te := &domain.TransactionError{InstructionIndex: &idx}

	if err := json.Unmarshal(pair[1], &kind); err == nil {
		te.Kind = kind
		te.Message = fmt.Sprintf("Error processing Instruction %d: %s", idx, kindMessage(kind))
		return te, nil
	}
	var custom struct {
		Custom *uint32 `json:"Custom"`
	}
	if err := json.Unmarshal(pair[1], &custom); err != nil || custom.Custom == nil {
		te.Kind = "GenericError"
		te.Message = fmt.Sprintf("Error processing Instruction %d: %s", idx, pair[1])
		return te, nil
	}
	te.Kind = "Custom"
	te.Custom = custom.Custom
	te.Message = fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", idx, *custom.Custom)
	return te, nil
}

func kindMessage(kind string) string {
	if le, ok := ledger.ErrorFromKind(kind); ok {
		return le.Error()
	}
	return kind
}
