package objects

// Error is the wire shape of a single error.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope returned by HTTP handlers on failure.
type ErrorResponse struct {
	Error Error `json:"error"`
}
