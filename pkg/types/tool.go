package types

// ParamType is the primitive type of a tool input parameter.
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeNumber ParamType = "number"
)

// ParamSchema describes a single input parameter of a tool.
type ParamSchema struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description"`

	// Enum optionally restricts the parameter to a fixed set of values.
	Enum []string `json:"enum,omitempty"`

	// Default is applied by the caller layer when the parameter is absent.
	Default any `json:"default,omitempty"`

	// Required marks the parameter as mandatory.
	// It mirrors the parameter's presence in ToolInputSchema.Required.
	Required bool `json:"required,omitempty"`
}

// ToolInputSchema defines the schema for the input parameters of a tool
type ToolInputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]ParamSchema `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// ToolDefinition is the public description of a tool, as advertised to callers.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ListToolsResponse is the response body of the tool listing endpoint.
type ListToolsResponse struct {
	Success bool             `json:"success"`
	Tools   []ToolDefinition `json:"tools"`
}

// InvokeToolRequest is the request body of the generic invoke endpoint.
type InvokeToolRequest struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
}
