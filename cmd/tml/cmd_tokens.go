package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/tml/markup"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a template",
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

			w := bufio.NewWriter(os.Stdout)
			for _, tok := range markup.Tokens(text, cfg.ParserOptions()...) {
				fmt.Fprintln(w, tok.String())
			}
			return w.Flush()
		},
	}
}
