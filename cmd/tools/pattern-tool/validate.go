// cmd/tools/pattern-tool/validate.go
package main

import (
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/validator"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		patternType string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pattern configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadConfiguration(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res := validator.Validate(models.PatternType(patternType), raw)
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.IsValid {
				return fmt.Errorf("configuration is invalid (%d error(s))", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&patternType, "type", "", "Pattern type, e.g. preset-top-3-rie (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Configuration file (.json, .yaml or - for stdin)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
