package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/records"
)

// MutateOptions holds flags shared by the write and delete commands.
type MutateOptions struct {
	*RootOptions
	DBPath  string
	DataDir string
	Tenant  string
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "write <message-file>",
		Short: "Process a RecordsWrite message",
		Long: `Process a signed RecordsWrite message against a local node store.

The message is parsed, authenticated, resolved against the record's
existing messages under the newest-wins order, and persisted if accepted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts, args[0], cmd, "write")
		},
	}
	addMutateFlags(cmd, opts)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <message-file>",
		Short: "Process a RecordsDelete message",
		Long: `Process a signed RecordsDelete message against a local node store.

An accepted delete tombstones the record: it stops answering currency
queries, superseded versions are pruned, and the initial write is retained
for provenance.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts, args[0], cmd, "delete")
		},
	}
	addMutateFlags(cmd, opts)
	return cmd
}

func addMutateFlags(cmd *cobra.Command, opts *MutateOptions) {
	cmd.Flags().StringVar(&opts.DBPath, "db", "tessera.db", "message store path")
	cmd.Flags().StringVar(&opts.DataDir, "data", "", "data store directory (default: <db>-data)")
	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant DID (required)")
	cmd.MarkFlagRequired("tenant")
}

func runMutation(opts *MutateOptions, path string, cmd *cobra.Command, kind string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read message", err)
	}

	n, err := openNode(opts.DBPath, opts.DataDir, opts.Verbose)
	if err != nil {
		return err
	}
	defer n.close()

	ctx := cmd.Context()
	var outcome records.Outcome
	switch kind {
	case "write":
		outcome, err = n.proc.HandleWrite(ctx, opts.Tenant, raw)
	case "delete":
		outcome, err = n.proc.HandleDelete(ctx, opts.Tenant, raw)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, kind+" failed", err)
	}

	if !outcome.Accepted() {
		formatter.Error(fmt.Sprintf("S%d", outcome.Status), outcome.Detail, outcome)
		return NewExitError(ExitFailure, fmt.Sprintf("%s rejected with status %d", kind, outcome.Status))
	}
	return formatter.Success(outcome)
}
