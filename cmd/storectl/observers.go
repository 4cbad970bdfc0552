package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/store/observability"
)

var observersCmd = &cobra.Command{
	Use:   "observers",
	Short: "List observer names accepted in config files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range observability.Observers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
