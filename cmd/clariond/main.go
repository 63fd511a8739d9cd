// Command clariond runs the emergency-response assistant either as an HTTP
// service or as a one-shot CLI question.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "clariond",
		Short: "Emergency-response assistant service",
		Long: `clariond routes emergency requests (rescue, hazard information,
contact lookup) to specialist agents. Credentials for AI, search and
verification collaborators are read from the environment; missing ones
degrade to deterministic fallback behavior.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAskCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
