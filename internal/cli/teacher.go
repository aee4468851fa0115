package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacher-archive/internal/models"
)

// TeacherListOptions holds flags for the teacher list command.
type TeacherListOptions struct {
	*RootOptions
	Search    string
	Subject   string
	Gender    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherListResult is one page of teachers.
type TeacherListResult struct {
	Teachers   []models.Teacher   `json:"teachers"`
	Pagination *models.Pagination `json:"pagination"`
}

// NewTeacherCommand groups the teacher subcommands.
func NewTeacherCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Browse and remove teacher archives",
	}
	cmd.AddCommand(newTeacherListCommand(rootOpts))
	cmd.AddCommand(newTeacherDeleteCommand(rootOpts))
	return cmd
}

func newTeacherListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TeacherListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teachers",
		Long: `List teachers ordered by name. --search matches a substring of the name or
identity number, ignoring case.

Examples:
  archive-store teacher list --search li
  archive-store teacher list --subject Mathematics --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeacherList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "name or identity number substring")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "teaching subject")
	cmd.Flags().StringVar(&opts.Gender, "gender", "", "gender (male|female)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "teachers per page")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "name", "sort column (name|id_number|created_at|updated_at)")
	cmd.Flags().StringVar(&opts.SortOrder, "order", "asc", "sort order (asc|desc)")

	return cmd
}

func runTeacherList(opts *TeacherListOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	teachers, pagination, err := app.Teachers.List(ctx, models.TeacherFilter{
		Search:    opts.Search,
		Subject:   opts.Subject,
		Gender:    opts.Gender,
		Page:      opts.Page,
		PageSize:  opts.PageSize,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	})
	if err != nil {
		return err
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}

	result := TeacherListResult{Teachers: teachers, Pagination: pagination}
	return opts.formatter(cmd).Success(result, func(w *tabwriter.Writer) {
		if len(teachers) == 0 {
			fmt.Fprintln(w, "No teachers found")
			return
		}
		fmt.Fprintln(w, "ID\tNAME\tID NUMBER\tSUBJECT\tPOSITION")
		for _, t := range teachers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.IDNumber, t.TeachingSubject, t.CurrentPosition)
		}
		fmt.Fprintf(w, "\nPage %d, %d of %d teachers\n", pagination.Page, len(teachers), pagination.TotalCount)
	})
}

func newTeacherDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <teacher-id>",
		Short: "Delete a teacher with every dependent record",
		Long: `Delete a teacher together with all owned records, award and project memberships and
mentoring pairs in one transaction. Photo and scan files are removed after the
transaction commits; files that cannot be removed are reported as orphaned.

Shared awards and projects are kept for their other recipients and members.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeacherDelete(rootOpts, cmd, args[0])
		},
	}
}

func runTeacherDelete(opts *RootOptions, cmd *cobra.Command, teacherID string) error {
	ctx := context.Background()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	result, err := app.Archive.DeleteTeacher(ctx, teacherID)
	if err != nil {
		return err
	}

	return opts.formatter(cmd).Success(result, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Deleted teacher %s\n", result.TeacherID)
		tables := make([]string, 0, len(result.DeletedRows))
		for table := range result.DeletedRows {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			if n := result.DeletedRows[table]; n > 0 {
				fmt.Fprintf(w, "  %s\t%d\n", table, n)
			}
		}
		fmt.Fprintf(w, "Artifacts removed:\t%d\n", len(result.RemovedArtifacts))
		for _, ref := range result.OrphanedArtifacts {
			fmt.Fprintf(w, "Orphaned artifact:\t%s\n", ref)
		}
	})
}
