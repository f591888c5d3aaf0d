package instructor

import "encoding/json"

// Tool is a server side capability the model may use during a round.
type Tool string

const (
	ToolURLContext    Tool = "urlContext"
	ToolGoogleSearch  Tool = "googleSearch"
	ToolCodeExecution Tool = "codeExecution"
)

// MarshalJSON encodes the capability marker, e.g. {"googleSearch":{}}.
func (t Tool) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]struct{}{string(t): {}})
}

func (t *Tool) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k := range m {
		*t = Tool(k)
		return nil
	}
	return nil
}
