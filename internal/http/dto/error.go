package dto

// ErrorResponse is the body of every 4xx and 5xx answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
