package types

import "time"

// SuccessResponse is the envelope for a successful API call
type SuccessResponse struct {
	Success     bool                `json:"success"`
	Data        any                 `json:"data"`
	Usage       *Usage              `json:"usage,omitempty"`
	Performance *PerformanceMetrics `json:"performance,omitempty"`
}

// ErrorResponse is the envelope for a failed API call
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// Usage reports model token consumption for a request
type Usage struct {
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
}

// Add accumulates token counts from another usage record
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	if u.Model == "" {
		u.Model = other.Model
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// NewSuccess wraps data in a success envelope
func NewSuccess(data any) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// NewError builds an error envelope stamped with the current time
func NewError(message string, details any, requestID string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
