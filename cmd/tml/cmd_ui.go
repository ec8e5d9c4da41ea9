package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/tml/ui"
	"github.com/dhamidi/tml/workspace"
)

func newUICmd() *cobra.Command {
	var addr string
	var root string
	var watch bool

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws := workspace.New(root, cfg)
			if err := ws.ScanAll(ctx); err != nil {
				return err
			}
			if watch {
				log := commonlog.GetLogger("tml.ui")
				watcher := workspace.NewFileWatcher(ws, time.Second)
				watcher.OnChange = func(path string, doc *workspace.Document) {
					log.Info("template changed", "path", path, "removed", doc == nil)
				}
				watcher.Start(ctx)
				defer watcher.Stop()
			}

			server, err := ui.NewServer(cfg, ws)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Printf("Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().StringVar(&root, "root", ".", "directory whose templates are listed")
	cmd.Flags().BoolVar(&watch, "watch", true, "rescan templates when they change")

	return cmd
}
