package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/FME849/wsos23-voting-app/internal/crypto"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/ledger"
	"github.com/FME849/wsos23-voting-app/internal/logging"
	"github.com/FME849/wsos23-voting-app/internal/program"
	"github.com/FME849/wsos23-voting-app/internal/rpc"
	"github.com/FME849/wsos23-voting-app/internal/store"
)

const faucetKeypairFile = "faucet.json"

var (
	listenAddr     string
	ledgerDir      string
	slotInterval   time.Duration
	faucetSOL      uint64
	programAddress string
	logLevel       string
	logJSON        bool
	logFile        string
)

func main() {
	root := &cobra.Command{
		Use:          "cluster",
		Short:        "Run a local single-node cluster with the voting program",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	f := root.Flags()
	f.StringVar(&listenAddr, "listen", ":8899", "JSON-RPC listen address")
	f.StringVar(&ledgerDir, "ledger", "", "directory for the ledger snapshot (empty keeps state in memory)")
	f.DurationVar(&slotInterval, "slot-interval", 400*time.Millisecond, "time between slots")
	f.Uint64Var(&faucetSOL, "faucet-sol", ledger.DefaultFaucetLamports/domain.LamportsPerSOL, "genesis faucet balance in SOL")
	f.StringVar(&programAddress, "program-id", program.ProgramID.String(), "address the voting program is deployed at")
	f.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&logJSON, "log-json", false, "write JSON log lines instead of console output")
	f.StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := logging.New(logging.Options{Level: logLevel, JSON: logJSON, File: logFile, App: "cluster"})
	if err != nil {
		return err
	}
	programID, err := solana.PublicKeyFromBase58(programAddress)
	if err != nil {
		return fmt.Errorf("invalid --program-id: %w", err)
	}
	faucetLamports, err := solToLamports(faucetSOL)
	if err != nil {
		return fmt.Errorf("invalid --faucet-sol: %w", err)
	}
	faucet, err := loadFaucet(ledgerDir)
	if err != nil {
		return err
	}

	opts := []ledger.Option{
		ledger.WithLogger(logger.With().Str("component", "bank").Logger()),
		ledger.WithProgram(program.New(programID)),
		ledger.WithFaucet(faucet, faucetLamports),
	}
	if ledgerDir != "" {
		opts = append(opts, ledger.WithStore(store.NewLedgerFileStore(ledgerDir)))
	}
	bank, err := ledger.New(opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           rpc.NewServer(bank, logger.With().Str("component", "rpc").Logger()).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", listenAddr).
			Str("program", programID.String()).
			Str("ledger", ledgerDir).
			Dur("slot_interval", slotInterval).
			Msg("cluster listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	go func() { _ = bank.Run(ctx, slotInterval) }()

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Uint64("slot", bank.Slot()).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
		return err
	}
	return nil
}

// loadFaucet returns the persisted faucet keypair for dir, creating it on
// first start. Without a ledger directory the faucet is ephemeral.
func loadFaucet(dir string) (solana.PrivateKey, error) {
	if dir == "" {
		key, _, err := crypto.GenerateKeypair()
		return key, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	ks := store.NewKeypairFileStore(filepath.Join(dir, faucetKeypairFile))
	if ks.Exists() {
		return ks.LoadKeypair("")
	}
	key, _, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	if err := ks.SaveKeypair("", key); err != nil {
		return nil, fmt.Errorf("save faucet keypair: %w", err)
	}
	return key, nil
}

// solToLamports converts a whole SOL amount, rejecting zero and amounts
// whose lamport value does not fit in a uint64.
func solToLamports(sol uint64) (uint64, error) {
	const maxSOL = math.MaxUint64 / domain.LamportsPerSOL
	if sol == 0 || sol > maxSOL {
		return 0, fmt.Errorf("%d SOL is outside 1..%d", sol, maxSOL)
	}
	return sol * domain.LamportsPerSOL, nil
}
