package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxnordlund/future/internal/script"
)

// ValidationResult holds per-file validation outcomes.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError pins a validation failure to its file.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files against the embedded schema and the
cross-field rules, without executing anything. Faster feedback loop
than run when authoring scenarios.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: len(paths)}
	for _, path := range paths {
		formatter.VerboseLog("validating %s", path)
		if _, err := script.Load(path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				File:    path,
				Message: err.Error(),
			})
		}
	}

	if !result.Valid {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeScenario, "validation failed", result)
		} else {
			for _, e := range result.Errors {
				fmt.Fprintf(formatter.Writer, "%s: %s\n", e.File, e.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) invalid", len(result.Errors), result.Files))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("%d file(s) valid", result.Files))
}
