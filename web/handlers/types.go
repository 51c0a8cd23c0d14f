package handlers

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes beyond the plain HTTP status text.
const (
	// CodeResourceExceeded marks a request whose traversal budget ran out
	// before an answer was found. Unlike a plain 400 the request was
	// well-formed; the caller should retry with tighter bounds.
	CodeResourceExceeded = "RESOURCE_EXCEEDED"
)

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Version string `json:"version"`
}
