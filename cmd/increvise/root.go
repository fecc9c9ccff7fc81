package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	envFile    string
	root       string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "increvise",
		Short: "Incremental reading: extract parts of notes into linked child notes",
		Long: `increvise manages a library of notes for incremental reading.

Extracting a range of lines from a host note moves them into a new child
note. The host keeps a locked placeholder that shows the child's current
content, and the link follows the host as it is edited.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file (.toml or .yaml); default <root>/.increvise/config.toml")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVarP(&flags.root, "root", "r", "", "library root (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(extractCmd(flags))
	cmd.AddCommand(showCmd(flags))
	cmd.AddCommand(rangesCmd(flags))
	cmd.AddCommand(shiftCmd(flags))
	cmd.AddCommand(reviewsCmd(flags))
	cmd.AddCommand(versionCmd())

	return cmd
}
