package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tessera/internal/protocol"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Normalize bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <definition-file>",
		Short: "Validate a protocol definition",
		Long: `Validate a protocol definition's rule tree.

Checks global-role placement, role-reference resolution, and identifier
normalization. The file may be JSON or YAML. By default the stored form is
required to be already normalized; pass --normalize to run the creation
path, which normalizes identifiers before validating and prints the
normalized definition.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Normalize, "normalize", false, "normalize identifiers before validating (creation path)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, err := loadDefinition(path)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "load definition", err)
	}
	formatter.VerboseLog("Loaded definition for protocol %q", def.Protocol)

	if opts.Normalize {
		if err := protocol.NormalizeDefinition(def); err != nil {
			formatter.Error("E002", err.Error(), nil)
			return WrapExitError(ExitFailure, "normalize definition", err)
		}
	}

	if err := protocol.ValidateDefinition(def); err != nil {
		formatter.Error("E003", err.Error(), nil)
		return WrapExitError(ExitFailure, "definition is invalid", err)
	}

	if opts.Normalize {
		normalized, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "encode definition", err)
		}
		return formatter.Success(string(normalized))
	}
	return formatter.Success(fmt.Sprintf("definition %s is valid", def.Protocol))
}

// loadDefinition reads a JSON or YAML definition file.
// YAML goes through a JSON round-trip so the RuleSet wire decoding is the
// single source of truth for control-key handling.
func loadDefinition(path string) (*protocol.Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", path, err)
		}
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
	}

	var def protocol.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse definition %s: %w", path, err)
	}
	return &def, nil
}
