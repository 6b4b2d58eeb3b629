package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/index"
	"github.com/roach88/tessera/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	DBPath string
	Tenant string
}

// recordStatus is the status command's output payload.
type recordStatus struct {
	RecordID string          `json:"recordId"`
	Current  string          `json:"current,omitempty"` // cid of the current message, if any
	Messages []messageStatus `json:"messages"`
}

type messageStatus struct {
	CID       string `json:"cid"`
	Method    string `json:"method"`
	Timestamp string `json:"timestamp"`
	IsCurrent bool   `json:"isCurrent"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <record-id>",
		Short: "Show a record's message history",
		Long: `Show every retained message for a record and which one, if any, is
current. A deleted record shows its retained history with no current
message.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "tessera.db", "message store path")
	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant DID (required)")
	cmd.MarkFlagRequired("tenant")

	return cmd
}

func runStatus(opts *StatusOptions, recordID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	msgs, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open message store", err)
	}
	defer msgs.Close()

	entries, err := msgs.QueryRecord(cmd.Context(), opts.Tenant, recordID)
	if err != nil {
		return WrapExitError(ExitCommandError, "query record", err)
	}

	status := recordStatus{RecordID: recordID, Messages: []messageStatus{}}
	for _, e := range entries {
		current := e.Index[index.FieldIsCurrent] == "true"
		if current {
			status.Current = e.CID
		}
		status.Messages = append(status.Messages, messageStatus{
			CID:       e.CID,
			Method:    e.Method,
			Timestamp: e.MessageTimestamp,
			IsCurrent: current,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(status)
	}

	if len(status.Messages) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "record %s: no messages\n", recordID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "record %s (%d messages)\n", recordID, len(status.Messages))
	for _, m := range status.Messages {
		marker := " "
		if m.IsCurrent {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n", marker, m.CID[:12], m.Method, m.Timestamp)
	}
	if status.Current == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no current message (record absent or deleted)")
	}
	return nil
}
