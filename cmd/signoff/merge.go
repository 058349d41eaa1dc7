package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge SOURCE [TARGET]",
	Short: "Merge one branch into another (default target: current branch)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	source := args[0]
	target := svc.CurrentBranch().Name
	if len(args) == 2 {
		target = args[1]
	}
	merge, err := svc.MergeBranch(context.Background(), source, target)
	if err != nil {
		return err
	}
	if err = saveStore(svc, URL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", merge.ShortID(), merge.Message)
	return nil
}
