package cli

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tally/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

func (o *RootOptions) load(skipSecret bool) (*config.Config, error) {
	return config.Load(config.Options{
		ConfigPath: o.ConfigPath,
		EnvFile:    o.EnvFile,
		SkipSecret: skipSecret,
	})
}

// NewRootCommand creates the root command for the kanso CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kanso",
		Short: "Kanso Tally - daily completion tracker",
		Long: `Kanso Tally tracks how often items get done each day.

Run the API server, migrate a database, or print a statistics report
straight from the store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a kanso.yaml file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}
