// Package validator checks scoring pattern configurations against the rules of
// their declared type and parses them into typed configurations.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

const (
	MinRanges = 1
	MaxRanges = 10
)

// Result is the outcome of a validation. Errors holds one entry per violated
// rule and is never nil.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func invalid(errs ...string) Result {
	return Result{IsValid: false, Errors: errs}
}

// Validate checks configuration against the rules of patternType.
func Validate(patternType models.PatternType, configuration json.RawMessage) Result {
	_, res := Parse(patternType, configuration)
	return res
}

// Parse validates configuration and, when valid, returns the typed
// configuration for patternType. The returned configuration is nil whenever
// the result is invalid.
func Parse(patternType models.PatternType, configuration json.RawMessage) (models.Configuration, Result) {
	category, ok := patternType.Category()
	if !ok {
		return nil, invalid(fmt.Sprintf("unknown pattern type %q", patternType))
	}
	if len(strings.TrimSpace(string(configuration))) == 0 {
		return nil, invalid("configuration is required")
	}

	structural, err := schemas[category].Validate(configuration)
	if err != nil {
		return nil, invalid(fmt.Sprintf("configuration is not valid JSON: %v", err))
	}
	if !structural.Valid {
		return nil, invalid(structural.GetErrorMessages()...)
	}

	var (
		cfg  models.Configuration
		errs []string
	)
	switch category {
	case models.CategoryFlagBased:
		var flag models.FlagConfiguration
		if err := json.Unmarshal(configuration, &flag); err != nil {
			return nil, invalid(fmt.Sprintf("configuration: %v", err))
		}
		cfg, errs = &flag, checkFlag(patternType, &flag)
	case models.CategoryRangeBased:
		var rng models.RangeConfiguration
		if err := json.Unmarshal(configuration, &rng); err != nil {
			return nil, invalid(fmt.Sprintf("configuration: %v", err))
		}
		cfg, errs = &rng, checkRange(&rng)
	}

	if len(errs) > 0 {
		return nil, invalid(errs...)
	}
	return cfg, Result{IsValid: true, Errors: []string{}}
}

func checkFlag(patternType models.PatternType, cfg *models.FlagConfiguration) []string {
	var errs []string

	switch patternType {
	case models.TypePresetHighest, models.TypePresetLowest:
		want := models.HighToLow
		if patternType == models.TypePresetLowest {
			want = models.LowToHigh
		}
		if cfg.FlagCount != 1 {
			errs = append(errs, fmt.Sprintf("flagCount must be 1 for %s (got %d)", patternType, cfg.FlagCount))
		}
		if cfg.OrderDirection != want {
			errs = append(errs, fmt.Sprintf("orderDirection must be %q for %s (got %q)", want, patternType, cfg.OrderDirection))
		}
	default:
		if cfg.FlagCount < 1 {
			errs = append(errs, fmt.Sprintf("flagCount must be at least 1 (got %d)", cfg.FlagCount))
		}
	}

	if cfg.PriorityRules {
		errs = append(errs, checkPriorityOrder(cfg.PriorityOrder)...)
	}
	return errs
}

func checkPriorityOrder(order []string) []string {
	if len(order) == 0 {
		return []string{"priorityOrder must not be empty when priorityRules is enabled"}
	}

	var errs []string
	seen := make(map[string]bool, len(order))
	reported := make(map[string]bool)
	for i, code := range order {
		if strings.TrimSpace(code) == "" {
			errs = append(errs, fmt.Sprintf("priorityOrder[%d] must not be blank", i))
			continue
		}
		if seen[code] && !reported[code] {
			errs = append(errs, fmt.Sprintf("priorityOrder contains duplicate code %q", code))
			reported[code] = true
		}
		seen[code] = true
	}
	return errs
}

func checkRange(cfg *models.RangeConfiguration) []string {
	var errs []string

	if n := len(cfg.Ranges); n < MinRanges || n > MaxRanges {
		errs = append(errs, fmt.Sprintf("ranges must contain between %d and %d entries (got %d)", MinRanges, MaxRanges, n))
	}

	for i, r := range cfg.Ranges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Sprintf("range %d (%q): min %d is greater than max %d", i+1, r.Label, r.Min, r.Max))
		}
		if strings.TrimSpace(r.Label) == "" {
			errs = append(errs, fmt.Sprintf("range %d: label must not be empty", i+1))
		}
	}

	for i := 0; i < len(cfg.Ranges); i++ {
		a := cfg.Ranges[i]
		if a.Min > a.Max {
			continue
		}
		for j := i + 1; j < len(cfg.Ranges); j++ {
			b := cfg.Ranges[j]
			if b.Min > b.Max {
				continue
			}
			if a.Overlaps(b) {
				errs = append(errs, fmt.Sprintf("ranges %d (%q %d-%d) and %d (%q %d-%d) overlap",
					i+1, a.Label, a.Min, a.Max, j+1, b.Label, b.Min, b.Max))
			}
		}
	}
	return errs
}
