package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current branch, head and open merge requests",
	RunE:  runStatus,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the repository content",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statusCmd, statsCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	status := svc.GetStatus()
	head := status.Head
	if len(head) > 8 {
		head = head[:8]
	}
	if head == "" {
		head = "(none)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "branch:  %s\n", status.Branch)
	fmt.Fprintf(out, "head:    %s\n", head)
	fmt.Fprintf(out, "commits: %d\n", status.Commits)
	fmt.Fprintf(out, "open merge requests: %d\n", status.PendingMR)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	stats := svc.GetStatistics()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "commits:  %d (%d merges)\n", stats.Commits, stats.Merges)
	fmt.Fprintf(out, "branches: %d\n", stats.Branches)
	fmt.Fprintf(out, "tags:     %d\n", stats.Tags)
	fmt.Fprintf(out, "approved: %d  rejected: %d\n", stats.Approved, stats.Rejected)
	for author, count := range stats.PerAuthor {
		fmt.Fprintf(out, "  %-20s %d\n", author, count)
	}
	return nil
}
