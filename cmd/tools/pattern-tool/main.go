// cmd/tools/pattern-tool/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pattern-tool",
		Short: "Offline checks for scoring pattern configurations",
		Long: `pattern-tool validates scoring pattern configurations, prints the schema a
pattern type must satisfy, previews how a pattern resolves a set of scores
without touching the database, and lists the scoring service tasks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newSchemaCmd(),
		newResolveCmd(),
		newActivitiesCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
