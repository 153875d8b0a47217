package rest

// ErrorResponse is the JSON envelope for API error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
