package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/signoffhq/signoff"
	"github.com/signoffhq/signoff/service/approval"
)

var submitCmd = &cobra.Command{
	Use:   "submit -f SUBMISSION",
	Short: "Run a change set through risk assessment and approval",
	Long: `Load a submission (task context plus proposed actions) from a JSON or
YAML file and run it through the approval flow. Auto-resolved submissions are
recorded immediately; pending ones are decided with --approve or --reject, or
left for the operator when neither flag is given.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringP("file", "f", "", "submission file (JSON or YAML)")
	submitCmd.Flags().Bool("approve", false, "approve when a decision is required")
	submitCmd.Flags().Bool("reject", false, "reject when a decision is required")
	submitCmd.Flags().String("comment", "", "decision comment")
	_ = submitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	store, URL, err := openStore(cmd)
	if err != nil {
		return err
	}
	svc, err := signoff.New(signoff.WithHistoryService(store))
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	submission, err := loadSubmission(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	outcome, err := svc.Submit(ctx, submission)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if outcome.AutoResolved {
		fmt.Fprintf(out, "auto-resolved: %s\n", outcome.Reason)
		return saveStore(store, URL)
	}

	fmt.Fprintf(out, "pending request %s (risk %s, category %s)\n",
		outcome.Request.ID, outcome.Request.RiskLevel, outcome.Request.Category)

	approve, _ := cmd.Flags().GetBool("approve")
	reject, _ := cmd.Flags().GetBool("reject")
	if !approve && !reject {
		return svc.Cancel(ctx, outcome.Request.ID)
	}
	comment, _ := cmd.Flags().GetString("comment")
	response := &approval.Response{
		Action:   approval.ActionApprove,
		Approved: true,
		Comment:  comment,
	}
	if reject {
		response.Action = approval.ActionReject
		response.Approved = false
	}
	recorded, err := svc.Respond(ctx, outcome.Request.ID, response)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s  %s\n", recorded.ShortID(), recorded.Message)
	return saveStore(store, URL)
}

func loadSubmission(URL string) (*approval.Submission, error) {
	data, err := afs.New().DownloadWithURL(context.Background(), URL)
	if err != nil {
		return nil, fmt.Errorf("loading submission %v: %w", URL, err)
	}
	submission := &approval.Submission{}
	lower := strings.ToLower(URL)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		err = yaml.Unmarshal(data, submission)
	} else {
		err = json.Unmarshal(data, submission)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding submission %v: %w", URL, err)
	}
	return submission, nil
}
