package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signoffhq/signoff/service/history"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List decisions on a branch, newest first",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringP("branch", "b", "", "branch to list (default: current)")
	logCmd.Flags().StringP("author", "a", "", "author substring filter")
	logCmd.Flags().StringP("message", "m", "", "message regular-expression filter")
	logCmd.Flags().IntP("limit", "n", 0, "maximum number of entries")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	branch, _ := cmd.Flags().GetString("branch")
	author, _ := cmd.Flags().GetString("author")
	message, _ := cmd.Flags().GetString("message")
	limit, _ := cmd.Flags().GetInt("limit")

	commits, err := svc.Log(&history.LogFilter{
		Branch:  branch,
		Author:  author,
		Message: message,
		Limit:   limit,
	})
	if err != nil {
		return err
	}
	for _, c := range commits {
		marker := ""
		if c.IsMerge() {
			marker = " (merge)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s%s\n",
			c.ShortID(), c.Timestamp.Format("2006-01-02 15:04:05"), c.Message, marker)
	}
	return nil
}
