package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "signoff",
	Short: "Approval history tooling",
	Long: `signoff inspects and manipulates the approval history: a git-like
record of every approve/reject/trust decision, with branches, tags and merge
requests on top.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("repo", "r", ".signoff/history.json", "history snapshot location")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
