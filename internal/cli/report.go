package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tally/internal/app"
	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
	"github.com/comitanigiacomo/kanso-tally/internal/core/toggle"
)

// ValidFormats defines the allowed report formats.
var ValidFormats = []string{FormatTable, FormatJSON, FormatYAML}

var ErrUserRequired = errors.New("--user is required")

type reportOptions struct {
	UserID string
	Format string
	Window int
}

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's statistics",
		Long: `Compute the statistics report for one user straight from the store.

The report covers the same days the tracker grid shows: at least --window
days ending today, widened to the user's earliest and latest records.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.UserID == "" {
				return ErrUserRequired
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Window < 0 {
				return fmt.Errorf("invalid window %d: must not be negative", opts.Window)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.UserID, "user", "u", "", "user ID to report on")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatTable, "output format (table|json|yaml)")
	cmd.Flags().IntVarP(&opts.Window, "window", "w", 0, "minimum number of days, 0 uses tracker.min_window")

	return cmd
}

func runReport(cmd *cobra.Command, rootOpts *RootOptions, opts *reportOptions) error {
	cfg, err := rootOpts.load(true)
	if err != nil {
		return err
	}
	cal, err := cfg.Tracker.Calendar()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stores, err := app.OpenStores(ctx, cfg.Database, false)
	if err != nil {
		return err
	}
	defer stores.Close()

	exec := toggle.NewExecutor(cal, stores.Items, stores.Records, nil)
	tracker := services.NewTrackerService(cal, stores.Items, stores.Records, exec, cfg.Tracker.MinWindow, nil)
	stats := services.NewStatsService(stores.Items, tracker, cal)

	report, err := stats.GetReport(ctx, services.StatsInput{UserID: opts.UserID, Window: opts.Window})
	if err != nil {
		return err
	}

	return RenderReport(cmd.OutOrStdout(), report, opts.Format)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
