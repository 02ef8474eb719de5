package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/burstplan/internal/app"
	"github.com/specialistvlad/burstplan/internal/composer"
	"github.com/specialistvlad/burstplan/internal/render"
	"github.com/specialistvlad/burstplan/internal/shard"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

func failure(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// globalFlags are shared by every command.
type globalFlags struct {
	fragments string
	logLevel  string
	logFormat string
	workers   int
	safetyNet string
}

// Execute runs the burstplan command line with args. Documents and listings
// go to outW, logs and usage errors to errW. Every returned error is an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra itself rejects (unknown command or flag, wrong argument
	// count) is a usage error.
	return usageError(err)
}

// NewRootCommand assembles the command tree.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "burstplan",
		Short: "Compose CI build plans from reusable task fragments",
		Long: `burstplan reads plan descriptors (HCL, YAML or JSON), composes every job
from the fragment library, shards chunked suites, binds the permission
policy and writes one validated document per plan.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(outW)
	root.SetErr(errW)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.fragments, "fragments", "", "Directory with additional fragment definitions.")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	pf.IntVar(&flags.workers, "workers", 4, "Number of plans rendered concurrently.")
	pf.StringVar(&flags.safetyNet, "safety-net", composer.DefaultSafetyNet, "Fragment prepended to every job. Empty disables it.")

	newApp := func() (*app.App, error) {
		cfg, err := app.NewConfig(app.Config{
			FragmentsPath: flags.fragments,
			SafetyNet:     flags.safetyNet,
			LogFormat:     flags.logFormat,
			LogLevel:      flags.logLevel,
			WorkerCount:   flags.workers,
		})
		if err != nil {
			return nil, usageError(err)
		}
		slog.Debug("CLI configuration validated.", "config", cfg)
		a, err := app.NewApp(outW, errW, cfg)
		if err != nil {
			return nil, failure(err)
		}
		return a, nil
	}

	root.AddCommand(
		renderCommand(newApp),
		validateCommand(newApp),
		inspectCommand(newApp),
		fragmentsCommand(newApp),
		shardsCommand(newApp),
		watchCommand(newApp),
	)
	return root
}

type appFactory func() (*app.App, error)

func renderCommand(newApp appFactory) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "render PATH...",
		Short: "Render plan documents",
		Long:  "Render every plan declared under the given files or directories, to stdout or one file per plan in --out.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := render.EncoderFor(format); err != nil {
				return usageError(err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return failure(a.Render(cmd.Context(), format, out, args...))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatJSON, "Output format: json, yaml or hcl.")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Directory to write documents into. Defaults to stdout.")
	return cmd
}

func validateCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Compose and validate plans without writing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			plans, err := a.Validate(cmd.Context(), args...)
			if err != nil {
				return failure(err)
			}
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d jobs)\n", p.Identifier(), p.JobCount())
			}
			return nil
		},
	}
}

func inspectCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Print a summary of the composed plans",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return failure(a.Inspect(cmd.Context(), args...))
		},
	}
}

func fragmentsCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "fragments",
		Short: "List the registered fragments and their placeholders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return failure(a.ListFragments())
		},
	}
}

func shardsCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "shards N",
		Short: "Print the shard labels for N chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil {
				return usageError(fmt.Errorf("shard count %q is not a number", args[0]))
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.Shards(total); err != nil {
				if errors.Is(err, shard.ErrInvalidShardCount) {
					return usageError(err)
				}
				return failure(err)
			}
			return nil
		},
	}
}

func watchCommand(newApp appFactory) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "watch PATH...",
		Short: "Re-render plans whenever a descriptor changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return usageError(errors.New("watch requires --out"))
			}
			if _, err := render.EncoderFor(format); err != nil {
				return usageError(err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return failure(a.Watch(cmd.Context(), format, out, args...))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatJSON, "Output format: json, yaml or hcl.")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Directory to write documents into.")
	return cmd
}
