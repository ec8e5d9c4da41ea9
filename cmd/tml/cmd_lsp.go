package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/tml/config"
	"github.com/dhamidi/tml/workspace"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			if globals.configPath != "" {
				loaded, err := loadConfig(".")
				if err != nil {
					return err
				}
				cfg = loaded
			}
			server := workspace.NewLSPServer(version, cfg)
			return server.RunStdio()
		},
	}
}
