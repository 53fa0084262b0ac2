package rpc

import (
	"encoding/json"
	"math"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
)

const jsonrpcVersion = "2.0"

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// contextual wraps results that are read at a particular slot.
type contextual[T any] struct {
	Context rpcContext `json:"context"`
	Value   T          `json:"value"`
}

type encodingConfig struct {
	Encoding   string `json:"encoding,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

type sendConfig struct {
	Encoding            string `json:"encoding,omitempty"`
	SkipPreflight       bool   `json:"skipPreflight,omitempty"`
	PreflightCommitment string `json:"preflightCommitment,omitempty"`
}

type simulateConfig struct {
	Encoding  string `json:"encoding,omitempty"`
	SigVerify bool   `json:"sigVerify,omitempty"`
}

type programAccountsConfig struct {
	Encoding string       `json:"encoding,omitempty"`
	Filters  []filterJSON `json:"filters,omitempty"`
}

type filterJSON struct {
	Memcmp   *memcmpJSON `json:"memcmp,omitempty"`
	DataSize *uint64     `json:"dataSize,omitempty"`
}

type memcmpJSON struct {
	Offset   uint64 `json:"offset"`
	Bytes    string `json:"bytes"`
	Encoding string `json:"encoding,omitempty"`
}

type blockhashJSON struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

type versionJSON struct {
	SolanaCore string `json:"solana-core"`
	FeatureSet uint32 `json:"feature-set"`
}

type accountJSON struct {
	Lamports   uint64    `json:"lamports"`
	Owner      string    `json:"owner"`
	Data       [2]string `json:"data"`
	Executable bool      `json:"executable"`
	RentEpoch  uint64    `json:"rentEpoch"`
	Space      uint64    `json:"space"`
}

type keyedAccountJSON struct {
	Pubkey  string      `json:"pubkey"`
	Account accountJSON `json:"account"`
}

type signatureStatusJSON struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	Status             json.RawMessage `json:"status"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

type transactionMetaJSON struct {
	Fee         uint64          `json:"fee"`
	Err         json.RawMessage `json:"err"`
	Status      json.RawMessage `json:"status"`
	LogMessages []string        `json:"logMessages"`
}

type transactionJSON struct {
	Slot      uint64              `json:"slot"`
	BlockTime *int64              `json:"blockTime"`
	Meta      transactionMetaJSON `json:"meta"`
}

type simulationJSON struct {
	Err           json.RawMessage `json:"err"`
	Logs          []string        `json:"logs"`
	Accounts      json.RawMessage `json:"accounts"`
	UnitsConsumed uint64          `json:"unitsConsumed"`
}

func toAccountJSON(a domain.Account) accountJSON {
	return accountJSON{
		Lamports:   a.Lamports,
		Owner:      a.Owner.String(),
		Data:       [2]string{crypto.B64(a.Data), "base64"},
		Executable: a.Executable,
		RentEpoch:  math.MaxUint64,
		Space:      uint64(len(a.Data)),
	}
}

func toSimulationJSON(res domain.SimulationResult) simulationJSON {
	logs := res.Logs
	if logs == nil {
		logs = []string{}
	}
	return simulationJSON{Err: encodeTxError(res.Err), Logs: logs}
}

// statusJSON renders the legacy {"Ok": null} / {"Err": ...} status field.
func statusJSON(te *domain.TransactionError) json.RawMessage {
	if te == nil {
		return json.RawMessage(`{"Ok":null}`)
	}
	return json.RawMessage(`{"Err":` + string(encodeTxError(te)) + `}`)
}
