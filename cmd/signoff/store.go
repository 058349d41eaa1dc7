package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/signoffhq/signoff/service/history"
	"github.com/signoffhq/signoff/service/history/snapshot"
)

// openStore loads the history snapshot named by --repo; a missing snapshot
// yields a fresh store so first use needs no init step.
func openStore(cmd *cobra.Command) (*history.Service, string, error) {
	URL, _ := cmd.Flags().GetString("repo")
	svc := history.New()
	ctx := context.Background()
	if ok, _ := afs.New().Exists(ctx, URL); !ok {
		return svc, URL, nil
	}
	if err := snapshot.New().Import(ctx, svc, URL); err != nil {
		return nil, "", fmt.Errorf("loading history: %w", err)
	}
	return svc, URL, nil
}

func saveStore(svc *history.Service, URL string) error {
	if err := snapshot.New().Export(context.Background(), svc, URL); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
