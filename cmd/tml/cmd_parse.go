package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/tml/format"
	"github.com/dhamidi/tml/markup"
	"github.com/dhamidi/tml/report"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var includePositions bool
	var canonical bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a template and dump its tree",
		Long:  "Parse a template (or - for standard input) and write its tree. Diagnostics go to standard error.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			cfg, err := loadConfig(sourceDir(filename))
			if err != nil {
				return err
			}
			text, err := readSource(filename)
			if err != nil {
				return err
			}

			nodes, diags := markup.Parse(text, cfg.ParserOptions()...)

			encoder, err := format.New(outputFormat, os.Stdout, includePositions, cfg.Registry().Lookup)
			if err != nil {
				return err
			}
			if m, ok := encoder.(*format.MarkupEncoder); ok {
				m.Canonical = canonical
			}
			if err := encoder.Encode(nodes); err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			if quiet || len(diags) == 0 {
				return nil
			}
			human := report.NewHuman(os.Stderr, report.ColorEnabled("auto", os.Stderr))
			return human.Write([]report.FileDiagnostics{{Path: filename, Source: text, Diagnostics: diags}})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include source spans in tree output")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "re-escape text in markup output")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print diagnostics")

	return cmd
}
