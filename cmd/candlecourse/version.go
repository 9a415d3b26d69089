package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/version"
)

func newVersionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(g.out, version.String())
		},
	}
}
