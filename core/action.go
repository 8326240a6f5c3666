package core

import "encoding/json"

// ActionRequest is the host-facing half of the correlation pair: one request
// per tool call, executed out-of-process by the host while the conversation
// is suspended. No ordering requirement is imposed on the host; ordering is
// restored by the matcher at merge time.
type ActionRequest struct {
	ID       string            `json:"id"`
	ToolName string            `json:"toolName"`
	Input    json.RawMessage   `json:"input"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// ActionResult is the host-supplied outcome for a previously dispatched
// ActionRequest. Output may be any JSON document or a plain string; IsError
// marks a failed tool execution that the model should see and react to.
type ActionResult struct {
	ID      string          `json:"id"`
	Output  json.RawMessage `json:"output"`
	IsError bool            `json:"isError"`
}

// NewActionResult builds a result from an arbitrary JSON-serializable value.
// Values that fail to marshal are stored as their quoted string rendering so
// a host bug never silently drops a result.
func NewActionResult(id string, output any, isError bool) ActionResult {
	raw, err := json.Marshal(output)
	if err != nil {
		raw, _ = json.Marshal("unserializable tool output")
	}
	return ActionResult{ID: id, Output: raw, IsError: isError}
}

// OutputText renders the raw output for embedding into a tool-result message:
// JSON strings are unquoted, everything else is kept as its JSON document.
func (r ActionResult) OutputText() string {
	var s string
	if err := json.Unmarshal(r.Output, &s); err == nil {
		return s
	}
	return string(r.Output)
}
