package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert COMMIT",
	Short: "Record the inverse of an earlier decision",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevert,
}

func init() {
	revertCmd.Flags().Bool("no-commit", false, "print the revert without recording it")
	rootCmd.AddCommand(revertCmd)
}

func runRevert(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	noCommit, _ := cmd.Flags().GetBool("no-commit")
	reverted, err := svc.RevertCommit(context.Background(), args[0], noCommit)
	if err != nil {
		return err
	}
	if !noCommit {
		if err = saveStore(svc, URL); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", reverted.ShortID(), reverted.Message)
	return nil
}
