package types

// HealthStatus is the response body of the health check endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ServerMetadata contains information about the running server.
type ServerMetadata struct {
	Version string `json:"version"`
}

// ErrorResponse is the body returned by the HTTP layer for failures that never reach a tool.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
