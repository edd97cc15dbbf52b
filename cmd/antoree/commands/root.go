package commands

import (
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	metrics    bool
}

// Execute runs the CLI
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "antoree",
		Short: "Command line client for the Antoree tutoring API",
		Long: `antoree calls the tutoring marketplace API through the same route table,
middleware chain and session storage as the Go client library.

Configuration is read from --config (YAML), a .env file next to it and
ANTOREE_* environment variables. NEXT_PUBLIC_API_URL overrides the API URL
from the config; --base-url overrides both.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides config and NEXT_PUBLIC_API_URL)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.metrics, "metrics", false, "print client metrics after the command")

	rootCmd.AddCommand(newRoutesCmd(opts))
	rootCmd.AddCommand(newCallCmd(opts))
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newTokenCmd(opts))
	rootCmd.AddCommand(newLanguageCmd(opts))
	rootCmd.AddCommand(newHealthCmd(opts))

	return rootCmd
}
