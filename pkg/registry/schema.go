// pkg/registry/schema.go
package registry

// ActivityRegistry describes the workflow activities this service implements,
// for process modelers wiring service tasks.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Version     string                 `json:"version"`
	TaskType    string                 `json:"taskType"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
	// OutputSchema documents the completed job's variables; it is not enforced.
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes   []string               `json:"errorCodes"` // BPMN error codes the activity can throw
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Tags         []string               `json:"tags,omitempty"`
}
