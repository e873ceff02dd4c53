// pkg/registry/scoring.go
package registry

func prop(t string) map[string]interface{} { return map[string]interface{}{"type": t} }

func object(required []string, props map[string]interface{}) map[string]interface{} {
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]interface{}{"type": "object", "required": req, "properties": props}
}

// Scoring returns the task types served by the scoring manager.
func Scoring() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:          "assign-test-result",
				DisplayName: "Assign Test Result",
				Description: "Resolves a completed attempt's scores against its pattern and stores the final result. Repeated calls for the same attempt return the stored result.",
				Category:    "scoring",
				TaskType:    "assign-test-result",
				InputSchema: object([]string{"testAttemptId", "testId", "userId"}, map[string]interface{}{
					"testAttemptId":  prop("string"),
					"testId":         prop("string"),
					"userId":         prop("string"),
					"patternId":      prop("string"),
					"scores":         prop("object"),
					"aggregateScore": prop("number"),
					"boundCodes":     prop("array"),
				}),
				OutputSchema: object(nil, map[string]interface{}{
					"userTestResultId":    prop("string"),
					"generatedResultCode": prop("string"),
					"title":               prop("string"),
					"finalScore":          prop("number"),
					"generationMethod":    prop("string"),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "NOT_FOUND", "PATTERN_INACTIVE", "STALE_CONFIGURATION", "QUERY_EXECUTION_FAILED", "DATABASE_INSERT_FAILED"},
				Timeout:    "30s",
				Retries:    3,
			},
			{
				ID:          "resolve-scoring-pattern",
				DisplayName: "Resolve Scoring Pattern",
				Description: "Previews the result code a stored or inline pattern produces. Nothing is persisted.",
				Category:    "scoring",
				TaskType:    "resolve-scoring-pattern",
				InputSchema: object(nil, map[string]interface{}{
					"patternId":      prop("string"),
					"type":           prop("string"),
					"configuration":  prop("object"),
					"scores":         prop("object"),
					"aggregateScore": prop("number"),
					"boundCodes":     prop("array"),
				}),
				OutputSchema: object(nil, map[string]interface{}{
					"resultCode":    prop("string"),
					"finalScore":    prop("number"),
					"patternActive": prop("boolean"),
					"outcome":       prop("object"),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "INVALID_CONFIGURATION", "NOT_FOUND", "UNRESOLVABLE_SCORE", "STALE_CONFIGURATION"},
				Timeout:    "10s",
				Retries:    1,
			},
			{
				ID:          "validate-scoring-pattern",
				DisplayName: "Validate Scoring Pattern",
				Description: "Checks a configuration against its type's rules and returns every violation.",
				Category:    "scoring",
				TaskType:    "validate-scoring-pattern",
				InputSchema: object([]string{"type", "configuration"}, map[string]interface{}{
					"type":          prop("string"),
					"configuration": prop("object"),
				}),
				OutputSchema: object(nil, map[string]interface{}{
					"isValid": prop("boolean"),
					"errors":  prop("array"),
				}),
				ErrorCodes: []string{"INVALID_INPUT"},
				Timeout:    "5s",
				Retries:    0,
			},
			{
				ID:          "manage-scoring-pattern",
				DisplayName: "Manage Scoring Pattern",
				Description: "Creates, reads, lists, updates, toggles, duplicates or deletes a scoring pattern.",
				Category:    "administration",
				TaskType:    "manage-scoring-pattern",
				InputSchema: object([]string{"operation"}, map[string]interface{}{
					"operation": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"create", "get", "list", "update", "toggle-active", "delete", "duplicate", "record-usage"},
					},
					"patternId": prop("string"),
					"category":  prop("string"),
					"pattern":   prop("object"),
					"update":    prop("object"),
					"newName":   prop("string"),
				}),
				OutputSchema: object(nil, map[string]interface{}{
					"pattern":  prop("object"),
					"patterns": prop("array"),
					"deleted":  prop("boolean"),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "INVALID_CONFIGURATION", "NOT_FOUND", "CONFLICT", "QUERY_EXECUTION_FAILED"},
				Timeout:    "15s",
				Retries:    3,
			},
			{
				ID:          "record-result-access",
				DisplayName: "Record Result Access",
				Description: "Counts a view or download of a stored result.",
				Category:    "analytics",
				TaskType:    "record-result-access",
				InputSchema: object([]string{"userTestResultId", "kind"}, map[string]interface{}{
					"userTestResultId": prop("string"),
					"kind": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"view", "download"},
					},
				}),
				OutputSchema: object(nil, map[string]interface{}{
					"viewCount":     prop("integer"),
					"downloadCount": prop("integer"),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "NOT_FOUND", "QUERY_EXECUTION_FAILED"},
				Timeout:    "5s",
				Retries:    3,
			},
		},
	}
}
