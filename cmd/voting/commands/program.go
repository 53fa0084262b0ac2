package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

func initializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Call the program's initialize instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, err := prog.Initialize(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Your transaction signature", sig)
			return nil
		},
	}
}

func createElectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-election <election-id>",
		Short: "Create an election with the wallet as initiator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, addr, err := prog.CreateElection(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Election: %s\nSignature: %s\n", addr, sig)
			return nil
		},
	}
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <election>",
		Short: "Apply as a candidate in an election",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			election, err := parsePubkey(args[0], "election")
			if err != nil {
				return err
			}
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, addr, err := prog.Apply(ctx, election)
			if err != nil {
				return err
			}
			c, err := prog.Candidate(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Printf("Candidate #%d: %s\nSignature: %s\n", c.ID, addr, sig)
			return nil
		},
	}
}

func stageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stage <election> <voting|closed>",
		Short: "Move an election to the next stage (initiator only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			election, err := parsePubkey(args[0], "election")
			if err != nil {
				return err
			}
			stage, err := domain.ParseElectionStage(args[1])
			if err != nil {
				return err
			}
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, err := prog.ChangeStage(ctx, election, stage)
			if err != nil {
				return err
			}
			e, err := prog.Election(ctx, election)
			if err != nil {
				return err
			}
			fmt.Printf("Stage: %s\nSignature: %s\n", e.Stage, sig)
			return nil
		},
	}
}

func voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <election> <candidate>",
		Short: "Vote for a candidate account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			election, err := parsePubkey(args[0], "election")
			if err != nil {
				return err
			}
			candidate, err := parsePubkey(args[1], "candidate")
			if err != nil {
				return err
			}
			prog, err := programHandle()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			sig, receipt, err := prog.Vote(ctx, election, candidate)
			if err != nil {
				return err
			}
			fmt.Printf("Vote receipt: %s\nSignature: %s\n", receipt, sig)
			return nil
		},
	}
}
