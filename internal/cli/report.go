package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacher-archive/internal/models"
)

// WinnersOptions holds flags for the report winners command.
type WinnersOptions struct {
	*RootOptions
	AwardType           string
	Level               string
	DateFrom            string
	DateTo              string
	TeachingCompetition bool
}

// NewReportCommand groups the read-only report subcommands.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Read-only archive reports",
	}
	cmd.AddCommand(newRollupsCommand(rootOpts))
	cmd.AddCommand(newWinnersCommand(rootOpts))
	cmd.AddCommand(newDistributionCommand(rootOpts))
	return cmd
}

func newRollupsCommand(rootOpts *RootOptions) *cobra.Command {
	var teacherID string

	cmd := &cobra.Command{
		Use:   "rollups",
		Short: "Per-teacher award, class, paper, project and apprentice counts",
		Long: `Show per-teacher counts of awards, taught classes, papers, research projects and
apprentices. Use --teacher to limit the report to one teacher.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRollups(rootOpts, cmd, teacherID)
		},
	}
	cmd.Flags().StringVar(&teacherID, "teacher", "", "teacher id")
	return cmd
}

func runRollups(opts *RootOptions, cmd *cobra.Command, teacherID string) error {
	ctx := context.Background()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	rollups, err := app.Reports.Rollups(ctx, teacherID)
	if err != nil {
		return err
	}
	if rollups == nil {
		rollups = []models.TeacherRollup{}
	}

	return opts.formatter(cmd).Success(rollups, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "TEACHER\tAWARDS\tCLASSES\tPAPERS\tPROJECTS\tAPPRENTICES")
		for _, r := range rollups {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Name, r.AwardCount, r.ClassCount, r.PaperCount, r.ProjectCount, r.ApprenticeCount)
		}
	})
}

func newWinnersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WinnersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "winners",
		Short: "List award recipients, highest level first",
		Long: `List award recipients ordered by level (global first, school last), then by award
date, newest first.

Examples:
  archive-store report winners --level national
  archive-store report winners --teaching-competition --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWinners(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AwardType, "type", "", "award type")
	cmd.Flags().StringVar(&opts.Level, "level", "", "award level (global|national|provincial|municipal|school)")
	cmd.Flags().StringVar(&opts.DateFrom, "from", "", "earliest award date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.DateTo, "to", "", "latest award date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.TeachingCompetition, "teaching-competition", false, "only teaching competition awards")

	return cmd
}

func runWinners(opts *WinnersOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	filter := models.AwardWinnerFilter{
		AwardType: opts.AwardType,
		Level:     models.Level(opts.Level),
		DateFrom:  opts.DateFrom,
		DateTo:    opts.DateTo,
	}
	if opts.TeachingCompetition {
		filter.AwardType = models.AwardTypeTeachingCompetition
	}

	winners, err := app.Reports.AwardWinners(ctx, filter)
	if err != nil {
		return err
	}
	if winners == nil {
		winners = []models.AwardWinner{}
	}

	return opts.formatter(cmd).Success(winners, func(w *tabwriter.Writer) {
		if len(winners) == 0 {
			fmt.Fprintln(w, "No awards found")
			return
		}
		fmt.Fprintln(w, "LEVEL\tDATE\tAWARD\tRANK\tTEACHER")
		for _, a := range winners {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.Level, a.AwardDate, a.AwardName, a.Rank, a.TeacherName)
		}
	})
}

func newDistributionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "distribution <title|degree|award_level|age_band>",
		Short:         "Count teachers by title, degree, award level or age band",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistribution(rootOpts, cmd, models.Distribution(args[0]))
		},
	}
}

func runDistribution(opts *RootOptions, cmd *cobra.Command, kind models.Distribution) error {
	ctx := context.Background()
	app, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	buckets, err := app.Reports.Distribution(ctx, kind)
	if err != nil {
		return err
	}
	if buckets == nil {
		buckets = []models.DistributionBucket{}
	}

	return opts.formatter(cmd).Success(buckets, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%s\tCOUNT\n", kind)
		for _, b := range buckets {
			fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
		}
	})
}
