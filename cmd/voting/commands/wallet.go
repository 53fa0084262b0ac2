package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/util/memzero"
)

func keygenCmd() *cobra.Command {
	var (
		force bool
		from  string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the wallet keypair, or import one with --from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from != "" {
				key, err := solana.PrivateKeyFromSolanaKeygenFile(from)
				if err != nil {
					return fmt.Errorf("read keypair %s: %w", from, err)
				}
				defer memzero.Zero(key)
				pub, err := wire.Wallet.ImportKeypair(wire.Config.Passphrase, key, force)
				if err != nil {
					return err
				}
				fmt.Printf("Imported keypair to %s\nAddress: %s\n", wire.Config.WalletPath, pub)
				return nil
			}
			pub, fp, err := wire.Wallet.GenerateKeypair(wire.Config.Passphrase, force)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote keypair to %s\nAddress: %s\nFingerprint: %s\n", wire.Config.WalletPath, pub, fp)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing keypair")
	cmd.Flags().StringVar(&from, "from", "", "import a solana-keygen JSON keypair file")
	return cmd
}

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, fp, err := wire.Wallet.Address(wire.Config.Passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("%s\nFingerprint: %s\n", pub, fp)
			return nil
		},
	}
}

func airdropCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "airdrop <SOL>",
		Short: "Request SOL from the cluster faucet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := parseSOL(args[0])
			if err != nil {
				return err
			}
			recipient, err := recipientOrWallet(to)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, err := wire.Cluster.RequestAirdrop(ctx, recipient, lamports)
			if err != nil {
				return err
			}
			fmt.Printf("Requesting airdrop of %s SOL to %s\nSignature: %s\n", args[0], recipient, sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address (default wallet)")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Print an account balance (default wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr string
			if len(args) == 1 {
				addr = args[0]
			}
			account, err := recipientOrWallet(addr)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			lamports, err := wire.Cluster.GetBalance(ctx, account)
			if err != nil {
				return err
			}
			fmt.Printf("%s SOL\n", formatSOL(lamports))
			return nil
		},
	}
}

func recipientOrWallet(addr string) (solana.PublicKey, error) {
	if addr != "" {
		return parsePubkey(addr, "account")
	}
	pub, _, err := wire.Wallet.Address(wire.Config.Passphrase)
	return pub, err
}

// lamportDecimals is the number of SOL decimals one lamport represents.
const lamportDecimals = 9

// parseSOL converts a decimal SOL amount to lamports without floating
// point. Amounts finer than a lamport or beyond uint64 are rejected.
func parseSOL(v string) (uint64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(v), ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid SOL amount %q", v)
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q", v)
	}

	var f uint64
	if digits := strings.TrimRight(frac, "0"); digits != "" {
		if len(digits) > lamportDecimals {
			return 0, fmt.Errorf("SOL amount %q is finer than one lamport", v)
		}
		digits += strings.Repeat("0", lamportDecimals-len(digits))
		if f, err = strconv.ParseUint(digits, 10, 64); err != nil {
			return 0, fmt.Errorf("invalid SOL amount %q", v)
		}
	}

	if w > (math.MaxUint64-f)/domain.LamportsPerSOL {
		return 0, fmt.Errorf("SOL amount %q is too large", v)
	}
	lamports := w*domain.LamportsPerSOL + f
	if lamports == 0 {
		return 0, fmt.Errorf("SOL amount %q must be positive", v)
	}
	return lamports, nil
}

func formatSOL(lamports uint64) string {
	whole, frac := lamports/domain.LamportsPerSOL, lamports%domain.LamportsPerSOL
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	digits := strings.TrimRight(fmt.Sprintf("%0*d", lamportDecimals, frac), "0")
	return strconv.FormatUint(whole, 10) + "." + digits
}
