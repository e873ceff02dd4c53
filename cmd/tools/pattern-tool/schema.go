// cmd/tools/pattern-tool/schema.go
package main

import (
	"fmt"
	"strings"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/validator"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var patternType string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for a pattern type",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, ok := validator.Schema(models.PatternType(patternType))
			if !ok {
				known := make([]string, 0, len(models.PatternTypes()))
				for _, t := range models.PatternTypes() {
					known = append(known, string(t))
				}
				return fmt.Errorf("unknown pattern type %q (known: %s)", patternType, strings.Join(known, ", "))
			}
			return writeJSON(cmd.OutOrStdout(), schema)
		},
	}

	cmd.Flags().StringVar(&patternType, "type", "", "Pattern type (required)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
