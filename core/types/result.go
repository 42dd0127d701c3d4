package types

// ToolStep records one tool invocation inside an agent run, verbatim.
type ToolStep struct {
	Tool   string `json:"tool"`
	Params string `json:"params"`
	Result string `json:"result"`
	Failed bool   `json:"failed,omitempty"`
}

// ExecutionResult is the envelope returned for every agent invocation.
// Success and Error are mutually consistent: Error is non-empty if and only
// if Success is false.
type ExecutionResult struct {
	Success         bool       `json:"success"`
	Output          string     `json:"output,omitempty"`
	Error           string     `json:"error,omitempty"`
	Agent           string     `json:"agent"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
	Steps           []ToolStep `json:"intermediate_steps,omitempty"`
	ActionID        *uint      `json:"action_id,omitempty"`
}
