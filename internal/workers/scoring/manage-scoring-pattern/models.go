// internal/workers/scoring/manage-scoring-pattern/models.go
package managescoringpattern

import (
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/patterns"
)

type Operation string

const (
	OpCreate       Operation = "create"
	OpGet          Operation = "get"
	OpList         Operation = "list"
	OpUpdate       Operation = "update"
	OpToggleActive Operation = "toggle-active"
	OpDelete       Operation = "delete"
	OpDuplicate    Operation = "duplicate"
	OpRecordUsage  Operation = "record-usage"
)

type Input struct {
	Operation Operation               `json:"operation"`
	PatternID string                  `json:"patternId,omitempty"`
	Category  models.PatternCategory  `json:"category,omitempty"`
	Pattern   *patterns.CreateRequest `json:"pattern,omitempty"`
	Update    *models.PatternUpdate   `json:"update,omitempty"`
	NewName   string                  `json:"newName,omitempty"`
}

// Output carries Pattern for single-pattern operations and Patterns for list.
type Output struct {
	Operation Operation                `json:"operation"`
	Pattern   *models.ScoringPattern   `json:"pattern,omitempty"`
	Patterns  []*models.ScoringPattern `json:"patterns,omitempty"`
	Deleted   bool                     `json:"deleted,omitempty"`
}
