package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/tml/config"
	"github.com/dhamidi/tml/report"
	"github.com/dhamidi/tml/workspace"
)

func newCheckCmd() *cobra.Command {
	var outputFormat string
	var colorMode string

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report diagnostics for templates",
		Long: `Parse every template below the given files or directories (default: the
current directory) and report diagnostics. Exits with status 1 when any
error was found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			files, err := checkPaths(ctx, cfg, args)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "human":
				colored := report.ColorEnabled(colorMode, os.Stdout)
				if err := report.NewHuman(os.Stdout, colored).Write(files); err != nil {
					return err
				}
			case "json":
				if err := report.WriteJSON(os.Stdout, files); err != nil {
					return err
				}
			case "sarif":
				sarif := report.NewSARIF(version)
				for _, f := range files {
					sarif.AddFile(f)
				}
				if _, err := sarif.WriteTo(os.Stdout); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			if errs, _ := report.Counts(files); errs > 0 {
				return fmt.Errorf("found %d errors", errs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "human", "output format (human, json, sarif)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output (auto, always, never)")

	return cmd
}

// checkPaths parses the templates named by paths, expanding directories.
// Files given explicitly are checked whatever their extension.
func checkPaths(ctx context.Context, cfg *config.Config, paths []string) ([]report.FileDiagnostics, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := workspace.Discover(ctx, p, cfg)
		if err != nil {
			return nil, fmt.Errorf("discover templates in %s: %w", p, err)
		}
		files = append(files, found...)
	}

	ws := workspace.New(".", cfg)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := ws.ScanFile(path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []report.FileDiagnostics
	for _, doc := range ws.Documents() {
		out = append(out, report.FileDiagnostics{
			Path:        doc.Path,
			Source:      doc.Content,
			Diagnostics: doc.Diagnostics,
		})
	}
	return out, nil
}
