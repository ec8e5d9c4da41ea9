package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/tml/markup"
)

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the diagnostic codes the parser can report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, code := range markup.Codes() {
				fmt.Fprintf(w, "%s\t%s\n", code, markup.DescribeCode(code))
			}
			return w.Flush()
		},
	}
}
