package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show COMMIT",
	Short: "Show one decision with its state diff",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	c, err := svc.GetCommit(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "commit  %s\n", c.ID)
	fmt.Fprintf(out, "author  %s\n", c.Author)
	fmt.Fprintf(out, "date    %s\n", c.Timestamp.Format("2006-01-02 15:04:05"))
	if len(c.Tags) > 0 {
		fmt.Fprintf(out, "tags    %s\n", strings.Join(c.Tags, ", "))
	}
	if c.RiskLevel != "" {
		fmt.Fprintf(out, "risk    %s\n", c.RiskLevel)
	}
	fmt.Fprintf(out, "\n    %s\n", c.Message)
	if c.Diff != nil {
		fmt.Fprintf(out, "\n%s: %s\n", c.Diff.Type, c.Diff.Summary)
		if c.Diff.Patch != "" {
			fmt.Fprintf(out, "\n%s", c.Diff.Patch)
		}
	}
	return nil
}
