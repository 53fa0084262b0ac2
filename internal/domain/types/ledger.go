package types

import "github.com/gagliardetto/solana-go"

// Account is the state the ledger keeps for one address.
type Account struct {
	Lamports   uint64           `json:"lamports"`
	Owner      solana.PublicKey `json:"owner"`
	Data       []byte           `json:"data"`
	Executable bool             `json:"executable"`
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	out := a
	if a.Data != nil {
		out.Data = append([]byte(nil), a.Data...)
	}
	return out
}

// KeyedAccount is an account together with its address.
type KeyedAccount struct {
	Pubkey  solana.PublicKey `json:"pubkey"`
	Account Account          `json:"account"`
}

// MemcmpFilter matches accounts whose data at Offset equals Bytes.
type MemcmpFilter struct {
	Offset uint64 `json:"offset"`
	Bytes  []byte `json:"bytes"`
}

// TransactionError describes why a transaction failed.
//
// Kind mirrors the cluster error names (BlockhashNotFound, Custom, ...).
// InstructionIndex is set when the failure happened inside an instruction,
// Custom carries a program-defined error code.
type TransactionError struct {
	Kind             string  `json:"kind"`
	InstructionIndex *int    `json:"instruction_index,omitempty"`
	Custom           *uint32 `json:"custom,omitempty"`
	Message          string  `json:"message,omitempty"`
}

func (e *TransactionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind
}

// TransactionRecord is what the ledger remembers about a processed transaction.
type TransactionRecord struct {
	Signature string            `json:"signature"`
	Slot      uint64            `json:"slot"`
	BlockTime int64             `json:"block_time"`
	Fee       uint64            `json:"fee"`
	Err       *TransactionError `json:"err,omitempty"`
	Logs      []string          `json:"logs"`
}

// SignatureStatus is the confirmation view of a TransactionRecord.
type SignatureStatus struct {
	Slot               uint64            `json:"slot"`
	ConfirmationStatus string            `json:"confirmation_status"`
	Err                *TransactionError `json:"err,omitempty"`
}

// SimulationResult is returned by a dry run of a transaction.
type SimulationResult struct {
	Err  *TransactionError `json:"err,omitempty"`
	Logs []string          `json:"logs"`
}

// Snapshot is the persisted form of the ledger.
type Snapshot struct {
	Slot        uint64                       `json:"slot"`
	Blockhashes []string                     `json:"blockhashes"`
	Accounts    map[string]Account           `json:"accounts"`
	Statuses    map[string]TransactionRecord `json:"statuses"`
}
