package utils

import "time"

// APIResponse is the envelope every endpoint of the booking service and the
// payment gateway replies with. The wizard frontend keys off Success and
// renders Message directly, so Message is always human-readable.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SuccessResponse wraps a payload for a 2xx reply.
func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ErrorResponse carries a display message plus the machine-side detail.
// Detail never includes internal state; it is what the caller may log.
func ErrorResponse(message, detail string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     detail,
		Timestamp: time.Now(),
	}
}
