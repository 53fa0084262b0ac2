package rpc_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
	"github.com/FME849/wsos23-voting-app/internal/program"
	"github.com/FME849/wsos23-voting-app/internal/rpc"
)

type cluster struct {
	bank   *ledger.Bank
	srv    *httptest.Server
	client *rpc.HTTPClient
}

func newCluster(t *testing.T) *cluster {
	t.Helper()
	bank, err := ledger.New(ledger.WithProgram(program.New(program.ProgramID)))
	require.NoError(t, err)
	srv := httptest.NewServer(rpc.NewServer(bank, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return &cluster{bank: bank, srv: srv, client: rpc.NewHTTP(srv.URL, srv.Client())}
}

func (c *cluster) funded(t *testing.T) solana.PrivateKey {
	t.Helper()
	priv, _, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	_, err = c.client.RequestAirdrop(context.Background(), priv.PublicKey(), domain.LamportsPerSOL)
	require.NoError(t, err)
	return priv
}

func (c *cluster) tx(t *testing.T, signer solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
	hash, _, err := c.client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	tx, err := solana.NewTransaction(ixs, hash, solana.TransactionPayer(signer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(signer.PublicKey()) {
			return &signer
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestHealth(t *testing.T) {
	c := newCluster(t)
	require.NoError(t, c.client.GetHealth(context.Background()))

	resp, err := http.Get(c.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get(rpc.RequestIDHeader))
}

func TestAirdropAndBalance(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	user := c.funded(t)

	bal, err := c.client.GetBalance(ctx, user.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, domain.LamportsPerSOL, bal)

	acc, err := c.client.GetAccountInfo(ctx, user.PublicKey())
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.True(t, acc.Owner.Equals(solana.SystemProgramID))

	missing, err := c.client.GetAccountInfo(ctx, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = c.client.RequestAirdrop(ctx, user.PublicKey(), 0)
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.CodeInvalidParams, rpcErr.Code)
}

func TestSendTransaction_ConfirmsAndReportsStatus(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	user := c.funded(t)

	sig, err := c.client.SendTransaction(ctx, c.tx(t, user, program.NewInitializeInstruction(program.ProgramID, user.PublicKey())), false)
	require.NoError(t, err)

	st, err := c.client.GetSignatureStatus(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "finalized", st.ConfirmationStatus)
	assert.Nil(t, st.Err)

	rec, err := c.client.GetTransaction(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, ledger.FeePerSignature, rec.Fee)
	assert.Contains(t, rec.Logs, "Program log: Instruction: Initialize")

	unknown, err := c.client.GetSignatureStatus(ctx, solana.Signature{1})
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestSendTransaction_PreflightFailureUnwrapsToProgramError(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	initiator, other := c.funded(t), c.funded(t)

	ix, election, err := program.NewCreateElectionInstruction(program.ProgramID, "rpc", initiator.PublicKey())
	require.NoError(t, err)
	_, err = c.client.SendTransaction(ctx, c.tx(t, initiator, ix), false)
	require.NoError(t, err)

	stage := program.NewChangeStageInstruction(program.ProgramID, election, other.PublicKey(), domain.StageVoting)
	_, err = c.client.SendTransaction(ctx, c.tx(t, other, stage), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, program.ErrWrongInitiator)

	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.CodeSendTransactionPreflight, rpcErr.Code)
	assert.NotEmpty(t, rpcErr.Logs())
	te := rpcErr.TransactionError()
	require.NotNil(t, te)
	require.NotNil(t, te.Custom)
	assert.Equal(t, program.ErrWrongInitiator.Code, *te.Custom)
}

func TestSendTransaction_SkipPreflightRecordsFailure(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	user := c.funded(t)

	ix, _, err := program.NewCreateElectionInstruction(program.ProgramID, "twice", user.PublicKey())
	require.NoError(t, err)
	_, err = c.client.SendTransaction(ctx, c.tx(t, user, ix), true)
	require.NoError(t, err)

	c.bank.AdvanceSlot()
	sig, err := c.client.SendTransaction(ctx, c.tx(t, user, ix), true)
	require.NoError(t, err, "a failed execution still returns its signature")

	st, err := c.client.GetSignatureStatus(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NotNil(t, st.Err)
	require.NotNil(t, st.Err.Custom)
	assert.Equal(t, uint32(0), *st.Err.Custom)
	require.NotNil(t, st.Err.InstructionIndex)
	assert.Equal(t, 0, *st.Err.InstructionIndex)

	rec, err := c.client.GetTransaction(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, errors.Is(rpc.Cause(st.Err, rec.Logs), ledger.ErrAccountAlreadyInUse))
	assert.False(t, errors.Is(rpc.Cause(st.Err, rec.Logs), program.ErrApplicationIsClosed))
}

func TestHTTPClient_SetsRequestIDPerCall(t *testing.T) {
	bank, err := ledger.New()
	require.NoError(t, err)
	router := rpc.NewServer(bank, zerolog.Nop()).Router()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(rpc.RequestIDHeader))
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := rpc.NewHTTP(srv.URL, nil)
	assert.Equal(t, srv.URL, client.Endpoint())
	ctx := context.Background()
	_, err = client.GetSlot(ctx)
	require.NoError(t, err)
	version, err := client.GetVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.NotEqual(t, seen[0], seen[1])
}

func TestSendTransaction_Rejections(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	user := c.funded(t)

	tx := c.tx(t, user, program.NewInitializeInstruction(program.ProgramID, user.PublicKey()))
	_, err := c.client.SendTransaction(ctx, tx, false)
	require.NoError(t, err)
	_, err = c.client.SendTransaction(ctx, tx, false)
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)

	forged := c.tx(t, user, program.NewInitializeInstruction(program.ProgramID, user.PublicKey()))
	forged.Signatures[0][5] ^= 1
	_, err = c.client.SendTransaction(ctx, forged, false)
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.CodeSignatureVerification, rpcErr.Code)
	assert.ErrorIs(t, err, ledger.ErrSignatureFailure)
}

func TestSimulateTransaction(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	user := c.funded(t)

	res, err := c.client.SimulateTransaction(ctx, c.tx(t, user, program.NewInitializeInstruction(program.ProgramID, user.PublicKey())))
	require.NoError(t, err)
	assert.Nil(t, res.Err)
	assert.Contains(t, res.Logs, "Program log: Greetings from: "+user.PublicKey().String())
}

func TestGetProgramAccounts_Memcmp(t *testing.T) {
	c := newCluster(t)
	ctx := context.Background()
	initiator, alice := c.funded(t), c.funded(t)

	ix, election, err := program.NewCreateElectionInstruction(program.ProgramID, "filtered", initiator.PublicKey())
	require.NoError(t, err)
	_, err = c.client.SendTransaction(ctx, c.tx(t, initiator, ix), false)
	require.NoError(t, err)
	apply, candidate, err := program.NewApplyInstruction(program.ProgramID, election, alice.PublicKey())
	require.NoError(t, err)
	_, err = c.client.SendTransaction(ctx, c.tx(t, alice, apply), false)
	require.NoError(t, err)

	all, err := c.client.GetProgramAccounts(ctx, program.ProgramID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	candidates, err := c.client.GetProgramAccounts(ctx, program.ProgramID, domain.MemcmpFilter{
		Offset: 0,
		Bytes:  program.CandidateDataDiscriminator[:],
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Pubkey.Equals(candidate))
	assert.Len(t, candidates[0].Account.Data, program.AccountSpace)
}

func TestServer_ProtocolErrors(t *testing.T) {
	c := newCluster(t)

	cases := []struct {
		name string
		body string
		code string
	}{
		{"parse error", `{`, "-32700"},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"getBlock"}`, "-32601"},
		{"bad params", `{"jsonrpc":"2.0","id":2,"method":"getBalance","params":["not-a-key"]}`, "-32602"},
		{"missing params", `{"jsonrpc":"2.0","id":3,"method":"getBalance"}`, "-32602"},
		{"wrong version", `{"jsonrpc":"1.0","id":4,"method":"getSlot"}`, "-32600"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(c.srv.URL, "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), `"code":`+tc.code)
		})
	}
}
