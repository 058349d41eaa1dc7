package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "List, create or delete tags",
	RunE:  runTagList,
}

var tagCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Tag a commit (default: current head)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagCreate,
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagDelete,
}

func init() {
	tagCreateCmd.Flags().StringP("commit", "c", "", "commit id to tag")
	tagCreateCmd.Flags().BoolP("force", "f", false, "overwrite an existing tag")
	tagCmd.AddCommand(tagCreateCmd, tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	svc, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	for _, tag := range svc.ListTags() {
		id := tag.CommitID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", tag.Name, id)
	}
	return nil
}

func runTagCreate(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	commitID, _ := cmd.Flags().GetString("commit")
	force, _ := cmd.Flags().GetBool("force")
	if _, err = svc.CreateTag(context.Background(), args[0], commitID, force); err != nil {
		return err
	}
	return saveStore(svc, URL)
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	svc, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	if err = svc.DeleteTag(context.Background(), args[0]); err != nil {
		return err
	}
	return saveStore(svc, URL)
}
