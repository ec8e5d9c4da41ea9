package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tml/config"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var globals struct {
	verbose    int
	configPath string
	logFile    string
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "tml",
		Short:        "A forgiving HTML-like template parser",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if globals.logFile != "" {
				path = &globals.logFile
			}
			commonlog.Configure(globals.verbose, path)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&globals.verbose, "verbose", "v", "log more (repeat for debug output)")
	flags.StringVar(&globals.configPath, "config", "", "project file (default: nearest "+config.FileName+")")
	flags.StringVar(&globals.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newCodesCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newUICmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig honors --config, otherwise looks for a project file from
// dir upwards.
func loadConfig(dir string) (*config.Config, error) {
	if globals.configPath != "" {
		cfg, err := config.Load(globals.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
