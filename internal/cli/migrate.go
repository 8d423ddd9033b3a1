package cli

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tally/internal/app"
	"github.com/comitanigiacomo/kanso-tally/internal/config"
)

var ErrNothingToMigrate = errors.New("the memory driver has no schema to migrate")

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the embedded schema for the configured driver.

The schema is idempotent, so running migrate twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load(true)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				return ErrNothingToMigrate
			}

			stores, err := app.OpenStores(cmd.Context(), cfg.Database, true)
			if err != nil {
				return err
			}
			defer stores.Close()

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
