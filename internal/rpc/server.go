package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
)

// Version is reported by getVersion.
const Version = "1.18.26"

const maxRequestBytes = 4 << 20

// Ledger is the cluster state the server exposes.
type Ledger interface {
	Slot() uint64
	Balance(pk solana.PublicKey) uint64
	LatestBlockhash() (solana.Hash, uint64)
	IsBlockhashValid(h solana.Hash) bool
	Account(pk solana.PublicKey) (domain.Account, bool)
	ProgramAccounts(owner solana.PublicKey, filters ...domain.MemcmpFilter) []domain.KeyedAccount
	Process(tx *solana.Transaction) (solana.Signature, error)
	Simulate(tx *solana.Transaction) (domain.SimulationResult, error)
	Status(sig solana.Signature) (domain.TransactionRecord, bool)
	Airdrop(to solana.PublicKey, lamports uint64) (solana.Signature, error)
}

type handlerFunc func(ctx context.Context, params []json.RawMessage) (any, error)

// Server answers JSON-RPC requests against a Ledger.
type Server struct {
	ledger  Ledger
	log     zerolog.Logger
	methods map[string]handlerFunc
}

// NewServer returns a server for l.
func NewServer(l Ledger, log zerolog.Logger) *Server {
	s := &Server{ledger: l, log: log}
	s.methods = map[string]handlerFunc{
		"getHealth":            s.getHealth,
		"getSlot":              s.getSlot,
		"getVersion":           s.getVersion,
		"getBalance":           s.getBalance,
		"getLatestBlockhash":   s.getLatestBlockhash,
		"isBlockhashValid":     s.isBlockhashValid,
		"sendTransaction":      s.sendTransaction,
		"simulateTransaction":  s.simulateTransaction,
		"getSignatureStatuses": s.getSignatureStatuses,
		"getTransaction":       s.getTransaction,
		"getAccountInfo":       s.getAccountInfo,
		"getProgramAccounts":   s.getProgramAccounts,
		"requestAirdrop":       s.requestAirdrop,
	}
	return s
}

// Router returns the HTTP handler: JSON-RPC on POST / and a liveness probe on
// GET /healthz.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Post("/", s.serveRPC)
	return r
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeResponse(w, response{JSONRPC: jsonrpcVersion, ID: json.RawMessage("null"), Error: newError(CodeParseError, "Parse error")})
		return
	}
	if info := requestInfoFrom(r.Context()); info != nil {
		info.rpcMethod = req.Method
	}
	resp := response{JSONRPC: jsonrpcVersion, ID: req.ID}
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	if req.JSONRPC != jsonrpcVersion {
		resp.Error = newError(CodeInvalidRequest, "Invalid request")
		writeResponse(w, resp)
		return
	}
	h, ok := s.methods[req.Method]
	if !ok {
		resp.Error = newError(CodeMethodNotFound, "Method not found")
		writeResponse(w, resp)
		return
	}

	params, err := splitParams(req.Params)
	if err != nil {
		resp.Error = invalidParams("%v", err)
		writeResponse(w, resp)
		return
	}
	result, err := h(r.Context(), params)
	if err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			s.log.Error().Err(err).Str("rpc_method", req.Method).Msg("rpc handler failed")
			rpcErr = newError(CodeInternalError, err.Error())
		}
		resp.Error = rpcErr
		writeResponse(w, resp)
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		resp.Error = newError(CodeInternalError, err.Error())
		writeResponse(w, resp)
		return
	}
	resp.Result = raw
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func splitParams(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var params []json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.New("params must be an array")
	}
	return params, nil
}

// param decodes params[i] into out. Missing optional params leave out as is.
func param(params []json.RawMessage, i int, out any, required bool) error {
	if i >= len(params) || string(params[i]) == "null" {
		if required {
			return invalidParams("missing parameter %d", i)
		}
		return nil
	}
	if err := json.Unmarshal(params[i], out); err != nil {
		return invalidParams("parameter %d: %v", i, err)
	}
	return nil
}

func pubkeyParam(params []json.RawMessage, i int) (solana.PublicKey, error) {
	var s string
	if err := param(params, i, &s, true); err != nil {
		return solana.PublicKey{}, err
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, invalidParams("invalid pubkey %q: %v", s, err)
	}
	return pk, nil
}

func transactionParam(params []json.RawMessage, encoding string) (*solana.Transaction, error) {
	var s string
	if err := param(params, 0, &s, true); err != nil {
		return nil, err
	}
	var raw []byte
	switch encoding {
	case "base64":
		b, err := crypto.FromB64(s)
		if err != nil {
			return nil, invalidParams("invalid base64 transaction: %v", err)
		}
		raw = b
	case "", "base58":
		var b solana.Base58
		if err := json.Unmarshal([]byte(fmt.Sprintf("%q", s)), &b); err != nil {
			return nil, invalidParams("invalid base58 transaction: %v", err)
		}
		raw = b
	default:
		return nil, invalidParams("unsupported encoding %q", encoding)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, invalidParams("failed to deserialize transaction: %v", err)
	}
	return tx, nil
}

func (s *Server) contextual(v any) contextual[any] {
	return contextual[any]{Context: rpcContext{Slot: s.ledger.Slot()}, Value: v}
}

func (s *Server) getHealth(context.Context, []json.RawMessage) (any, error) {
	return "ok", nil
}

func (s *Server) getSlot(context.Context, []json.RawMessage) (any, error) {
	return s.ledger.Slot(), nil
}

func (s *Server) getVersion(context.Context, []json.RawMessage) (any, error) {
	return versionJSON{SolanaCore: Version}, nil
}

func (s *Server) getBalance(_ context.Context, params []json.RawMessage) (any, error) {
	pk, err := pubkeyParam(params, 0)
	if err != nil {
		return nil, err
	}
	return s.contextual(s.ledger.Balance(pk)), nil
}

func (s *Server) getLatestBlockhash(context.Context, []json.RawMessage) (any, error) {
	h, last := s.ledger.LatestBlockhash()
	return s.contextual(blockhashJSON{Blockhash: h.String(), LastValidBlockHeight: last}), nil
}

func (s *Server) isBlockhashValid(_ context.Context, params []json.RawMessage) (any, error) {
	var str string
	if err := param(params, 0, &str, true); err != nil {
		return nil, err
	}
	h, err := solana.HashFromBase58(str)
	if err != nil {
		return nil, invalidParams("invalid blockhash %q: %v", str, err)
	}
	return s.contextual(s.ledger.IsBlockhashValid(h)), nil
}

func (s *Server) sendTransaction(_ context.Context, params []json.RawMessage) (any, error) {
	var cfg sendConfig
	if err := param(params, 1, &cfg, false); err != nil {
		return nil, err
	}
	tx, err := transactionParam(params, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	if !cfg.SkipPreflight {
		res, err := s.ledger.Simulate(tx)
		if err != nil {
			return nil, sanitizeError(err)
		}
		if res.Err != nil {
			return nil, preflightError(res)
		}
	}

	sig, err := s.ledger.Process(tx)
	if err != nil && sig == (solana.Signature{}) {
		return nil, sanitizeError(err)
	}
	// Executed but failed: the failure is recorded under the signature.
	return sig.String(), nil
}

// sanitizeError maps a transaction rejected before execution to its RPC form.
func sanitizeError(err error) *Error {
	if errors.Is(err, ledger.ErrSignatureFailure) {
		return newError(CodeSignatureVerification, "Transaction signature verification failure")
	}
	return preflightError(domain.SimulationResult{Err: ledger.TransactionErrorFrom(err)})
}

func (s *Server) simulateTransaction(_ context.Context, params []json.RawMessage) (any, error) {
	var cfg simulateConfig
	if err := param(params, 1, &cfg, false); err != nil {
		return nil, err
	}
	tx, err := transactionParam(params, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	res, err := s.ledger.Simulate(tx)
	if err != nil {
		if errors.Is(err, ledger.ErrSignatureFailure) {
			return nil, sanitizeError(err)
		}
		res = domain.SimulationResult{Err: ledger.TransactionErrorFrom(err)}
	}
	return s.contextual(toSimulationJSON(res)), nil
}

func (s *Server) getSignatureStatuses(_ context.Context, params []json.RawMessage) (any, error) {
	var sigs []string
	if err := param(params, 0, &sigs, true); err != nil {
		return nil, err
	}
	if len(sigs) > 256 {
		return nil, invalidParams("too many signatures: %d > 256", len(sigs))
	}
	out := make([]*signatureStatusJSON, len(sigs))
	for i, str := range sigs {
		sig, err := solana.SignatureFromBase58(str)
		if err != nil {
			return nil, invalidParams("invalid signature %q: %v", str, err)
		}
		rec, ok := s.ledger.Status(sig)
		if !ok {
			continue
		}
		out[i] = &signatureStatusJSON{
			Slot:               rec.Slot,
			Err:                encodeTxError(rec.Err),
			Status:             statusJSON(rec.Err),
			ConfirmationStatus: "finalized",
		}
	}
	return s.contextual(out), nil
}

func (s *Server) getTransaction(_ context.Context, params []json.RawMessage) (any, error) {
	var str string
	if err := param(params, 0, &str, true); err != nil {
		return nil, err
	}
	sig, err := solana.SignatureFromBase58(str)
	if err != nil {
		return nil, invalidParams("invalid signature %q: %v", str, err)
	}
	rec, ok := s.ledger.Status(sig)
	if !ok {
		return nil, nil
	}
	bt := rec.BlockTime
	return transactionJSON{
		Slot:      rec.Slot,
		BlockTime: &bt,
		Meta: transactionMetaJSON{
			Fee:         rec.Fee,
			Err:         encodeTxError(rec.Err),
			Status:      statusJSON(rec.Err),
			LogMessages: rec.Logs,
		},
	}, nil
}

func (s *Server) getAccountInfo(_ context.Context, params []json.RawMessage) (any, error) {
	pk, err := pubkeyParam(params, 0)
	if err != nil {
		return nil, err
	}
	var cfg encodingConfig
	if err := param(params, 1, &cfg, false); err != nil {
		return nil, err
	}
	if cfg.Encoding != "" && cfg.Encoding != "base64" {
		return nil, invalidParams("unsupported encoding %q", cfg.Encoding)
	}
	acc, ok := s.ledger.Account(pk)
	if !ok {
		return s.contextual(nil), nil
	}
	return s.contextual(toAccountJSON(acc)), nil
}

func (s *Server) getProgramAccounts(_ context.Context, params []json.RawMessage) (any, error) {
	owner, err := pubkeyParam(params, 0)
	if err != nil {
		return nil, err
	}
	var cfg programAccountsConfig
	if err := param(params, 1, &cfg, false); err != nil {
		return nil, err
	}
	if cfg.Encoding != "" && cfg.Encoding != "base64" {
		return nil, invalidParams("unsupported encoding %q", cfg.Encoding)
	}

	var filters []domain.MemcmpFilter
	var dataSize *uint64
	for _, f := range cfg.Filters {
		switch {
		case f.Memcmp != nil:
			b, err := decodeFilterBytes(*f.Memcmp)
			if err != nil {
				return nil, err
			}
			filters = append(filters, domain.MemcmpFilter{Offset: f.Memcmp.Offset, Bytes: b})
		case f.DataSize != nil:
			dataSize = f.DataSize
		default:
			return nil, invalidParams("unsupported filter")
		}
	}

	out := []keyedAccountJSON{}
	for _, ka := range s.ledger.ProgramAccounts(owner, filters...) {
		if dataSize != nil && uint64(len(ka.Account.Data)) != *dataSize {
			continue
		}
		out = append(out, keyedAccountJSON{Pubkey: ka.Pubkey.String(), Account: toAccountJSON(ka.Account)})
	}
	return out, nil
}

func decodeFilterBytes(m memcmpJSON) ([]byte, error) {
	switch m.Encoding {
	case "", "base58":
		var b solana.Base58
		if err := json.Unmarshal([]byte(fmt.Sprintf("%q", m.Bytes)), &b); err != nil {
			return nil, invalidParams("invalid base58 memcmp bytes: %v", err)
		}
		return b, nil
	case "base64":
		b, err := crypto.FromB64(m.Bytes)
		if err != nil {
			return nil, invalidParams("invalid base64 memcmp bytes: %v", err)
		}
		return b, nil
	}
	return nil, invalidParams("unsupported memcmp encoding %q", m.Encoding)
}

func (s *Server) requestAirdrop(_ context.Context, params []json.RawMessage) (any, error) {
	to, err := pubkeyParam(params, 0)
	if err != nil {
		return nil, err
	}
	var lamports uint64
	if err := param(params, 1, &lamports, true); err != nil {
		return nil, err
	}
	sig, err := s.ledger.Airdrop(to, lamports)
	if err != nil {
		if errors.Is(err, ledger.ErrAirdropAmount) {
			return nil, invalidParams("%v", err)
		}
		return nil, newError(CodeInternalError, "airdrop failed: "+err.Error())
	}
	s.log.Info().Str("to", to.String()).Uint64("lamports", lamports).Str("signature", sig.String()).Msg("airdrop")
	return sig.String(), nil
}
