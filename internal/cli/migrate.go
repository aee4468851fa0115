package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacher-archive/internal/repository"
)

// MigrateResult reports the archive that was initialised.
type MigrateResult struct {
	Database     string   `json:"database"`
	ArtifactRoot string   `json:"artifact_root"`
	Tables       []string `json:"tables"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing archive tables",
		Long: `Ensure every archive table and index exists. Existing tables and rows are left untouched,
so running migrate repeatedly is safe.

Examples:
  archive-store migrate --db ./teacher_archive.db
  archive-store migrate --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	app, err := opts.open(context.Background())
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	result := MigrateResult{
		Database:     app.Config.Database.Path,
		ArtifactRoot: app.Store.Root(),
		Tables:       repository.TableNames(),
	}
	return opts.formatter(cmd).Success(result, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Archive ready: %s\n", result.Database)
		fmt.Fprintf(w, "Artifacts:     %s\n", result.ArtifactRoot)
		fmt.Fprintf(w, "Tables:        %d\n", len(result.Tables))
	})
}
