package election_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FME849/wsos23-voting-app/internal/app"
	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
	"github.com/FME849/wsos23-voting-app/internal/program"
	"github.com/FME849/wsos23-voting-app/internal/rpc"
	"github.com/FME849/wsos23-voting-app/internal/services/election"
	"github.com/FME849/wsos23-voting-app/internal/store"
)

// startCluster serves a fresh ledger with the voting program deployed.
func startCluster(t *testing.T) *rpc.HTTPClient {
	t.Helper()
	bank, err := ledger.New(ledger.WithProgram(program.New(program.ProgramID)))
	require.NoError(t, err)
	srv := httptest.NewServer(rpc.NewServer(bank, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return rpc.NewHTTP(srv.URL, srv.Client())
}

func fundedKey(t *testing.T, client *rpc.HTTPClient) solana.PrivateKey {
	t.Helper()
	priv, _, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	_, err = client.RequestAirdrop(context.Background(), priv.PublicKey(), 2*domain.LamportsPerSOL)
	require.NoError(t, err)
	return priv
}

func handle(t *testing.T, client *rpc.HTTPClient, opts ...election.Option) *election.Service {
	t.Helper()
	opts = append([]election.Option{election.WithPollInterval(10 * time.Millisecond)}, opts...)
	return election.New(client, program.ProgramID, fundedKey(t, client), opts...)
}

func TestInitialize_EnvironmentConfiguredWorkspaceProgram(t *testing.T) {
	client := startCluster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	walletPath := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, store.NewKeypairFileStore(walletPath).SaveKeypair("", fundedKey(t, client)))

	t.Setenv(app.EnvProviderURL, client.Endpoint())
	t.Setenv(app.EnvWallet, walletPath)
	t.Setenv(app.EnvPassphrase, "")
	t.Setenv(app.EnvWorkspace, "")

	cfg, err := app.Load(app.Overrides{})
	require.NoError(t, err)
	w, err := app.NewWire(cfg)
	require.NoError(t, err)
	prog, err := w.Program("wsos23_voting_app")
	require.NoError(t, err)
	require.NoError(t, prog.EnsureDeployed(ctx))

	sig, err := prog.Initialize(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sig.String())
	t.Log("Your transaction signature", sig)
}

func TestEnsureDeployed_UnknownProgram(t *testing.T) {
	client := startCluster(t)
	svc := election.New(client, solana.NewWallet().PublicKey(), fundedKey(t, client))
	assert.ErrorIs(t, svc.EnsureDeployed(context.Background()), election.ErrProgramNotDeployed)
}

func TestElectionLifecycle(t *testing.T) {
	client := startCluster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	initiator := handle(t, client)
	alice, bob := handle(t, client), handle(t, client)
	v1, v2 := handle(t, client), handle(t, client)

	_, addr, err := initiator.CreateElection(ctx, "board")
	require.NoError(t, err)
	// Another election's candidates must not be listed.
	_, otherAddr, err := initiator.CreateElection(ctx, "other")
	require.NoError(t, err)
	_, _, err = v1.Apply(ctx, otherAddr)
	require.NoError(t, err)

	_, aliceCand, err := alice.Apply(ctx, addr)
	require.NoError(t, err)
	_, bobCand, err := bob.Apply(ctx, addr)
	require.NoError(t, err)

	cands, err := v2.Candidates(ctx, addr)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, uint64(1), cands[0].ID)
	assert.True(t, cands[0].Address.Equals(aliceCand))
	assert.True(t, cands[1].Pubkey.Equals(bob.Payer()))

	_, err = alice.ChangeStage(ctx, addr, domain.StageVoting)
	assert.ErrorIs(t, err, program.ErrWrongInitiator)
	_, err = initiator.ChangeStage(ctx, addr, domain.StageVoting)
	require.NoError(t, err)

	_, _, err = v1.Vote(ctx, addr, bobCand)
	require.NoError(t, err)
	_, _, err = v2.Vote(ctx, addr, bobCand)
	require.NoError(t, err)
	_, _, err = v2.Vote(ctx, addr, aliceCand)
	assert.ErrorIs(t, err, ledger.ErrAccountAlreadyInUse)

	mine, err := v1.MyVote(ctx, addr)
	require.NoError(t, err)
	assert.Zero(t, mine.ID)
	assert.True(t, mine.Pubkey.Equals(bob.Payer()))

	_, err = initiator.ChangeStage(ctx, addr, domain.StageClosed)
	require.NoError(t, err)

	e, err := v1.Election(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "board", e.ID)
	assert.Equal(t, domain.StageClosed, e.Stage)
	assert.Equal(t, uint64(2), e.WinnersID)
	assert.Equal(t, uint64(2), e.WinnersVotes)

	c, err := v1.Candidate(ctx, bobCand)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), c.Votes)
}

func TestSkipPreflight_FailureSurfacesOnConfirm(t *testing.T) {
	client := startCluster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initiator := handle(t, client)
	_, addr, err := initiator.CreateElection(ctx, "skip")
	require.NoError(t, err)

	intruder := handle(t, client, election.WithSkipPreflight(true))
	sig, err := intruder.ChangeStage(ctx, addr, domain.StageVoting)
	assert.NotEqual(t, solana.Signature{}, sig)
	assert.ErrorIs(t, err, program.ErrWrongInitiator)
}

func TestReads_MissingAccounts(t *testing.T) {
	client := startCluster(t)
	svc := handle(t, client)

	_, err := svc.Election(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, election.ErrAccountNotFound)

	_, err = svc.MyVote(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, election.ErrAccountNotFound)

	_, err = svc.Candidate(context.Background(), svc.Payer())
	assert.ErrorIs(t, err, program.ErrAccountOwnedByWrongProgram)
}
