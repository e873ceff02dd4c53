package validator

import (
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/validation"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

var flagSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"title":    "FlagConfiguration",
	"type":     "object",
	"required": []interface{}{"flagCount", "orderDirection"},
	"properties": map[string]interface{}{
		"flagCount": map[string]interface{}{"type": "integer"},
		"orderDirection": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{string(models.HighToLow), string(models.LowToHigh)},
		},
		"priorityRules": map[string]interface{}{"type": "boolean"},
		"priorityOrder": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

var rangeSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"title":    "RangeConfiguration",
	"type":     "object",
	"required": []interface{}{"ranges"},
	"properties": map[string]interface{}{
		"filter": map[string]interface{}{"type": "string"},
		"ranges": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"min", "max", "label"},
				"properties": map[string]interface{}{
					"min":   map[string]interface{}{"type": "integer"},
					"max":   map[string]interface{}{"type": "integer"},
					"label": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

var schemas = map[models.PatternCategory]*validation.Schema{
	models.CategoryFlagBased:  validation.MustCompile(flagSchema),
	models.CategoryRangeBased: validation.MustCompile(rangeSchema),
}

// Schema returns the JSON Schema document that configurations of
// patternType must satisfy structurally.
func Schema(patternType models.PatternType) (map[string]interface{}, bool) {
	category, ok := patternType.Category()
	if !ok {
		return nil, false
	}
	return schemas[category].Source(), true
}
