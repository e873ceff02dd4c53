// cmd/tools/pattern-tool/resolve.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/resolver"

	"github.com/spf13/cobra"
)

type resolveOpts struct {
	patternType string
	file        string
	scores      string
	aggregate   float64
	bound       []string
}

type resolveOutput struct {
	ResultCode string                    `json:"resultCode"`
	FinalScore float64                   `json:"finalScore"`
	Outcome    *models.ResolutionOutcome `json:"outcome"`
}

func newResolveCmd() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Preview the result a pattern produces for a set of scores",
		Example: `  pattern-tool resolve --type preset-top-3-rie -f top3.json --scores '{"R":45,"I":42,"E":42}'
  pattern-tool resolve --type range-male-adult -f ranges.yaml --aggregate 61`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadConfiguration(opts.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			in := resolver.Input{BoundCodes: opts.bound}
			if opts.scores != "" {
				if err := json.Unmarshal([]byte(opts.scores), &in.Scores); err != nil {
					return fmt.Errorf("parse --scores: %w", err)
				}
			}
			if cmd.Flags().Changed("aggregate") {
				agg := opts.aggregate
				in.AggregateScore = &agg
			}

			patternType := models.PatternType(opts.patternType)
			category, _ := patternType.Category()
			pattern := &models.ScoringPattern{
				ID:            "cli",
				Name:          "cli",
				Category:      category,
				Type:          patternType,
				Configuration: raw,
				IsActive:      true,
			}

			outcome, err := resolver.NewEngine(logger.NewNoOpLogger()).Resolve(pattern, in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resolveOutput{
				ResultCode: outcome.ResultCode(),
				FinalScore: outcome.FinalScore(),
				Outcome:    outcome,
			})
		},
	}

	cmd.Flags().StringVar(&opts.patternType, "type", "", "Pattern type (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "Configuration file (.json, .yaml or - for stdin)")
	cmd.Flags().StringVar(&opts.scores, "scores", "", `Component scores as a JSON object, e.g. '{"R":45,"I":42}'`)
	cmd.Flags().Float64Var(&opts.aggregate, "aggregate", 0, "Aggregate score for range-based patterns")
	cmd.Flags().StringSliceVar(&opts.bound, "bound", nil, "Flag codes bound to the test (comma separated)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
