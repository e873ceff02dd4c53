// pkg/registry/schema.go
package registry

// ActivityRegistry describes the service tasks a BPMN process can call.
type ActivityRegistry struct {
	Version    string     `json:"version" yaml:"version"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

type Activity struct {
	ID           string                 `json:"id" yaml:"id"`
	DisplayName  string                 `json:"displayName" yaml:"displayName"`
	Description  string                 `json:"description" yaml:"description"`
	Category     string                 `json:"category" yaml:"category"`
	TaskType     string                 `json:"taskType" yaml:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty" yaml:"outputSchema,omitempty"`
	ErrorCodes   []string               `json:"errorCodes" yaml:"errorCodes"`
	Timeout      string                 `json:"timeout" yaml:"timeout"`
	Retries      int                    `json:"retries" yaml:"retries"`
}
