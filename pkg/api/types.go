package api

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DeletedResponse acknowledges a delete.
type DeletedResponse struct {
	Deleted string `json:"deleted"`
}

// TouchedResponse acknowledges a dataset update.
type TouchedResponse struct {
	Name string `json:"name"`
	User string `json:"user"`
}
