// internal/models/scoring_pattern.go
package models

import (
	"encoding/json"
	"time"
)

// PatternCategory groups pattern types by evaluation strategy.
type PatternCategory string

const (
	CategoryFlagBased  PatternCategory = "flag-based"
	CategoryRangeBased PatternCategory = "range-based"
)

// Valid reports whether c is one of the known categories.
func (c PatternCategory) Valid() bool {
	return c == CategoryFlagBased || c == CategoryRangeBased
}

// PatternType is a concrete resolution strategy within a category.
type PatternType string

const (
	TypePresetHighest     PatternType = "preset-highest"
	TypePresetLowest      PatternType = "preset-lowest"
	TypePresetTop3RIE     PatternType = "preset-top-3-rie"
	TypePresetTop5        PatternType = "preset-top-5"
	TypeCustomFlagPattern PatternType = "custom-flag-pattern"

	TypeRangeMaleAdult     PatternType = "range-male-adult"
	TypeRangeFemaleAdult   PatternType = "range-female-adult"
	TypeCustomRangePattern PatternType = "custom-range-pattern"
)

var patternCategories = map[PatternType]PatternCategory{
	TypePresetHighest:      CategoryFlagBased,
	TypePresetLowest:       CategoryFlagBased,
	TypePresetTop3RIE:      CategoryFlagBased,
	TypePresetTop5:         CategoryFlagBased,
	TypeCustomFlagPattern:  CategoryFlagBased,
	TypeRangeMaleAdult:     CategoryRangeBased,
	TypeRangeFemaleAdult:   CategoryRangeBased,
	TypeCustomRangePattern: CategoryRangeBased,
}

// Category returns the category a type belongs to. The second value is
// false for unknown types.
func (t PatternType) Category() (PatternCategory, bool) {
	c, ok := patternCategories[t]
	return c, ok
}

// PatternTypes lists every known type in a stable order.
func PatternTypes() []PatternType {
	return []PatternType{
		TypePresetHighest, TypePresetLowest, TypePresetTop3RIE, TypePresetTop5, TypeCustomFlagPattern,
		TypeRangeMaleAdult, TypeRangeFemaleAdult, TypeCustomRangePattern,
	}
}

// OrderDirection controls the primary sort of flag scores.
type OrderDirection string

const (
	HighToLow OrderDirection = "high-to-low"
	LowToHigh OrderDirection = "low-to-high"
)

// Configuration is the parsed, strategy-specific payload of a pattern.
// Only FlagConfiguration and RangeConfiguration implement it.
type Configuration interface {
	Category() PatternCategory
	isConfiguration()
}

type FlagConfiguration struct {
	FlagCount      int            `json:"flagCount"`
	OrderDirection OrderDirection `json:"orderDirection"`
	PriorityRules  bool           `json:"priorityRules"`
	PriorityOrder  []string       `json:"priorityOrder,omitempty"`
}

func (*FlagConfiguration) Category() PatternCategory { return CategoryFlagBased }
func (*FlagConfiguration) isConfiguration()          {}

// ScoreRange is a closed interval [Min, Max] mapped to a label.
type ScoreRange struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// Contains reports whether score falls inside the closed interval.
func (r ScoreRange) Contains(score float64) bool {
	return float64(r.Min) <= score && score <= float64(r.Max)
}

// Overlaps reports whether two closed intervals share at least one point.
func (r ScoreRange) Overlaps(o ScoreRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

type RangeConfiguration struct {
	Filter string       `json:"filter"`
	Ranges []ScoreRange `json:"ranges"`
}

func (*RangeConfiguration) Category() PatternCategory { return CategoryRangeBased }
func (*RangeConfiguration) isConfiguration()          {}

// ScoringPattern is a stored, administrator-authored pattern. Configuration
// keeps the exact bytes that were submitted so payloads round-trip unchanged.
type ScoringPattern struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      PatternCategory `json:"category"`
	Type          PatternType     `json:"type"`
	Configuration json.RawMessage `json:"configuration"`
	IsActive      bool            `json:"isActive"`
	UsageCount    int64           `json:"usageCount"`
	LastUsedAt    *time.Time      `json:"lastUsedAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PatternUpdate carries a partial update. Nil fields are left unchanged.
type PatternUpdate struct {
	Name          *string         `json:"name,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Type          *PatternType    `json:"type,omitempty"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
	IsActive      *bool           `json:"isActive,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u PatternUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Type == nil && len(u.Configuration) == 0 && u.IsActive == nil
}

// Apply returns a copy of p with the update merged in.
func (u PatternUpdate) Apply(p ScoringPattern) ScoringPattern {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Type != nil {
		p.Type = *u.Type
		if c, ok := u.Type.Category(); ok {
			p.Category = c
		}
	}
	if len(u.Configuration) > 0 {
		p.Configuration = append(json.RawMessage(nil), u.Configuration...)
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	return p
}

// TestPatternBinding attaches a pattern to a test.
type TestPatternBinding struct {
	TestID    string `json:"testId"`
	PatternID string `json:"patternId"`
	IsActive  bool   `json:"isActive"`
}
