package dto

type HealthResponse struct {
	Status      string          `json:"status"`
	Timestamp   int64           `json:"timestamp"`
	Agents      map[string]bool `json:"agents"`
	Connections int             `json:"connections"`
}

type LLMHealthResponse struct {
	OK          bool   `json:"ok"`
	Model       string `json:"model,omitempty"`
	RateLimited bool   `json:"rateLimited,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	Details     string `json:"details,omitempty"`
}
