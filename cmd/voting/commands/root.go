package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/FME849/wsos23-voting-app/internal/app"
	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/logging"
)

var (
	workspace   string
	clusterURL  string
	walletPath  string
	passphrase  string
	programName string
	logLevel    string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:          "voting",
		Short:        "Client for the on-chain voting program",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(app.Overrides{
				Workspace:  workspace,
				Cluster:    clusterURL,
				Wallet:     walletPath,
				Passphrase: passphrase,
				Program:    programName,
			})
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{Level: logLevel, App: "voting"})
			if err != nil {
				return err
			}
			cfg.Logger = logger
			logger.Debug().
				Str("cluster", cfg.ClusterURL).
				Str("wallet", cfg.WalletPath).
				Str("workspace", cfg.Workspace).
				Msg("configuration loaded")

			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace file (default ./"+app.DefaultWorkspaceFile+")")
	root.PersistentFlags().StringVarP(&clusterURL, "cluster", "u", "", "cluster URL or moniker (localnet, devnet, ...)")
	root.PersistentFlags().StringVarP(&walletPath, "wallet", "k", "", "keypair file (default ~/.config/solana/id.json)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keypair file")
	root.PersistentFlags().StringVar(&programName, "program", "", "workspace program name or address")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		keygenCmd(), addressCmd(), airdropCmd(), balanceCmd(),
		initializeCmd(), createElectionCmd(), applyCmd(), stageCmd(), voteCmd(),
		electionCmd(), candidatesCmd(), statusCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

// commandContext bounds a subcommand by the configured timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), wire.Config.Timeout)
}

// programHandle resolves the configured program and loads the wallet.
func programHandle() (domain.ElectionService, error) {
	return wire.Program(wire.Config.Program)
}

func parsePubkey(arg, what string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(arg)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s address %q: %w", what, arg, err)
	}
	return pk, nil
}
