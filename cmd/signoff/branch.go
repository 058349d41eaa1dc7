package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "List, create, delete or check out branches",
	RunE:  runBranchList,
}

var branchCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a branch at the current head",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchCreate,
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchDelete,
}

var branchCheckoutCmd = &cobra.Command{
	Use:   "checkout NAME",
	Short: "Make a branch current",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchCheckout,
}

func init() {
	branchCreateCmd.Flags().String("base", "", "base commit id (default: current head)")
	branchDeleteCmd.Flags().BoolP("force", "f", false, "delete even when protected or unmerged")
	branchCmd.AddCommand(branchCreateCmd, branchDeleteCmd, branchCheckoutCmd)
	rootCmd.AddCommand(branchCmd)
}

func runBranchList(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	current := svc.CurrentBranch().Name
	for _, branch := range svc.ListBranches(nil) {
		marker := " "
		if branch.Name == current {
			marker = "*"
		}
		head := branch.Head
		if len(head) > 8 {
			head = head[:8]
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %s\n", marker, branch.Name, head)
	}
	return nil
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	base, _ := cmd.Flags().GetString("base")
	if _, err = svc.CreateBranch(context.Background(), args[0], base); err != nil {
		return err
	}
	return saveStore(svc, URL)
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	if err = svc.DeleteBranch(context.Background(), args[0], force); err != nil {
		return err
	}
	return saveStore(svc, URL)
}

func runBranchCheckout(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	if _, err = svc.CheckoutBranch(context.Background(), args[0]); err != nil {
		return err
	}
	return saveStore(svc, URL)
}
