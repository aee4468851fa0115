package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/pkg/config"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
	"github.com/noah-isme/teacher-archive/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Database  string
	Artifacts string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the archive store CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "archive-store",
		Short: "Teacher archive store",
		Long:  "Maintains teacher archives: profiles, career records, shared awards, research projects and mentoring pairs.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags", fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "archive database file (overrides DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Artifacts, "artifacts", "", "artifact root directory (overrides ARTIFACT_ROOT)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTeacherCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd, opts
}

// Execute runs the CLI with args and returns the process exit code.
// Failures are reported on stdout as JSON or on stderr as text.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	var appErr *appErrors.Error
	if !errors.As(err, &exitErr) && !errors.As(err, &appErr) {
		err = WrapExitError(ExitCommandError, "invalid command", err)
	}
	out := &OutputFormatter{Format: opts.Format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	if !isValidFormat(out.Format) {
		out.Format = "text"
	}
	out.Error(err)
	return GetExitCode(err)
}

// formatter builds the output formatter for a running command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: o.Verbose}
}

// open loads configuration, applies flag overrides and opens the archive.
func (o *RootOptions) open(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	if o.Artifacts != "" {
		cfg.Artifacts.Root = o.Artifacts
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to init logger", err)
	}

	app, err := Open(ctx, cfg, logr)
	if err != nil {
		logr.Error("archive unavailable", zap.Error(err))
		return nil, WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	return app, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
