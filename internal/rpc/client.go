package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/google/uuid"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

const commitment = solanarpc.CommitmentFinalized

// HTTPClient implements domain.ClusterClient on top of the solana-go RPC
// client. JSON-RPC errors come back as *Error so callers can match them
// with errors.Is.
type HTTPClient struct {
	endpoint string
	rpc      *solanarpc.Client
}

// NewHTTP returns a client for endpoint. A nil httpClient uses
// http.DefaultTransport. Every request carries a fresh RequestIDHeader.
func NewHTTP(endpoint string, httpClient *http.Client) *HTTPClient {
	hc := &http.Client{}
	if httpClient != nil {
		*hc = *httpClient
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = requestIDTransport{next: next}

	rpcClient := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{HTTPClient: hc})
	return &HTTPClient{endpoint: endpoint, rpc: solanarpc.NewWithCustomRPCClient(rpcClient)}
}

var _ domain.ClusterClient = (*HTTPClient)(nil)

// Endpoint returns the cluster URL.
func (c *HTTPClient) Endpoint() string { return c.endpoint }

func (c *HTTPClient) GetHealth(ctx context.Context) error {
	out, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return convertError(err)
	}
	if out != solanarpc.HealthOk {
		return fmt.Errorf("cluster unhealthy: %s", out)
	}
	return nil
}

func (c *HTTPClient) GetSlot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, commitment)
	return slot, convertError(err)
}

func (c *HTTPClient) GetVersion(ctx context.Context) (string, error) {
	out, err := c.rpc.GetVersion(ctx)
	if err != nil {
		return "", convertError(err)
	}
	return out.SolanaCore, nil
}

func (c *HTTPClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, commitment)
	if err != nil {
		return 0, convertError(err)
	}
	return out.Value, nil
}

func (c *HTTPClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Hash{}, 0, convertError(err)
	}
	if out.Value == nil {
		return solana.Hash{}, 0, errors.New("getLatestBlockhash: empty result")
	}
	return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
}

func (c *HTTPClient) IsBlockhashValid(ctx context.Context, h solana.Hash) (bool, error) {
	out, err := c.rpc.IsBlockhashValid(ctx, h, commitment)
	if err != nil {
		return false, convertError(err)
	}
	return out.Value, nil
}

func (c *HTTPClient) SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       skipPreflight,
		PreflightCommitment: commitment,
	})
	if err != nil {
		return solana.Signature{}, convertError(err)
	}
	return sig, nil
}

func (c *HTTPClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (domain.SimulationResult, error) {
	out, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &solanarpc.SimulateTransactionOpts{SigVerify: true})
	if err != nil {
		return domain.SimulationResult{}, convertError(err)
	}
	if out.Value == nil {
		return domain.SimulationResult{}, errors.New("simulateTransaction: empty result")
	}
	te, err := txErrorFrom(out.Value.Err)
	if err != nil {
		return domain.SimulationResult{}, err
	}
	return domain.SimulationResult{Err: te, Logs: out.Value.Logs}, nil
}

func (c *HTTPClient) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*domain.SignatureStatus, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if errors.Is(err, solanarpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, convertError(err)
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	st := out.Value[0]
	te, err := txErrorFrom(st.Err)
	if err != nil {
		return nil, err
	}
	return &domain.SignatureStatus{
		Slot:               st.Slot,
		ConfirmationStatus: string(st.ConfirmationStatus),
		Err:                te,
	}, nil
}

func (c *HTTPClient) GetTransaction(ctx context.Context, sig solana.Signature) (*domain.TransactionRecord, error) {
	out, err := c.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{Commitment: commitment})
	if errors.Is(err, solanarpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, convertError(err)
	}
	rec := &domain.TransactionRecord{Signature: sig.String(), Slot: out.Slot}
	if out.BlockTime != nil {
		rec.BlockTime = int64(*out.BlockTime)
	}
	if out.Meta != nil {
		te, err := txErrorFrom(out.Meta.Err)
		if err != nil {
			return nil, err
		}
		rec.Fee = out.Meta.Fee
		rec.Err = te
		rec.Logs = out.Meta.LogMessages
	}
	return rec, nil
}

func (c *HTTPClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*domain.Account, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &solanarpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: commitment,
	})
	if errors.Is(err, solanarpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, convertError(err)
	}
	acc := fromRPCAccount(out.Value)
	return &acc, nil
}

func (c *HTTPClient) GetProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...domain.MemcmpFilter) ([]domain.KeyedAccount, error) {
	opts := &solanarpc.GetProgramAccountsOpts{Encoding: solana.EncodingBase64, Commitment: commitment}
	for _, f := range filters {
		opts.Filters = append(opts.Filters, solanarpc.RPCFilter{
			Memcmp: &solanarpc.RPCFilterMemcmp{Offset: f.Offset, Bytes: solana.Base58(f.Bytes)},
		})
	}
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, program, opts)
	if err != nil {
		return nil, convertError(err)
	}
	accounts := make([]domain.KeyedAccount, 0, len(out))
	for _, ka := range out {
		if ka == nil || ka.Account == nil {
			continue
		}
		accounts = append(accounts, domain.KeyedAccount{Pubkey: ka.Pubkey, Account: fromRPCAccount(ka.Account)})
	}
	return accounts, nil
}

func (c *HTTPClient) RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, to, lamports, commitment)
	if err != nil {
		return solana.Signature{}, convertError(err)
	}
	return sig, nil
}

func fromRPCAccount(a *solanarpc.Account) domain.Account {
	acc := domain.Account{Lamports: a.Lamports, Owner: a.Owner, Executable: a.Executable}
	if a.Data != nil {
		acc.Data = a.Data.GetBinary()
	}
	return acc
}

// txErrorFrom decodes the generic JSON value solana-go leaves in err fields.
func txErrorFrom(v any) (*domain.TransactionError, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode transaction error: %w", err)
	}
	return decodeTxError(raw)
}

// convertError turns a *jsonrpc.RPCError into *Error, keeping its data so
// that preflight failures still carry their logs and transaction error.
func convertError(err error) error {
	var re *jsonrpc.RPCError
	if !errors.As(err, &re) {
		return err
	}
	out := &Error{Code: re.Code, Message: re.Message}
	if re.Data != nil {
		if data, mErr := json.Marshal(re.Data); mErr == nil {
			out.Data = data
		}
	}
	return out
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t requestIDTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.next.RoundTrip(r)
}
