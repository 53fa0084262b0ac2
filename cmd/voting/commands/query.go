package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func electionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "election <election>",
		Short: "Show an election account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parsePubkey(args[0], "election")
			if err != nil {
				return err
			}
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			e, err := prog.Election(ctx, addr)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
			fmt.Fprintf(tw, "Stage:\t%s\n", e.Stage)
			fmt.Fprintf(tw, "Initiator:\t%s\n", e.Initiator)
			fmt.Fprintf(tw, "Candidates:\t%d\n", e.Candidates)
			fmt.Fprintf(tw, "Leader:\t#%d (%d votes)\n", e.WinnersID, e.WinnersVotes)
			return tw.Flush()
		},
	}
}

func candidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <election>",
		Short: "List the candidates of an election",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parsePubkey(args[0], "election")
			if err != nil {
				return err
			}
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			cands, err := prog.Candidates(ctx, addr)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVOTES\tCANDIDATE\tACCOUNT")
			for _, c := range cands {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.ID, c.Votes, c.Pubkey, c.Address)
			}
			return tw.Flush()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <signature>",
		Short: "Show the outcome and logs of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := solana.SignatureFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid signature %q: %w", args[0], err)
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			rec, err := wire.Cluster.GetTransaction(ctx, sig)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("transaction %s not found", sig)
			}
			result := "ok"
			if rec.Err != nil {
				result = rec.Err.Error()
			}
			fmt.Printf("Slot: %d\nFee: %d lamports\nResult: %s\n", rec.Slot, rec.Fee, result)
			for _, l := range rec.Logs {
				fmt.Println("  " + l)
			}
			return nil
		},
	}
}
