package serverutils

// Response is the standard API envelope.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorBody is the payload attached to failed requests. ErrorType lets the
// frontend distinguish local quota denials from provider-wide outages.
type ErrorBody struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ErrorType       string `json:"error_type,omitempty"`
	CooldownMinutes int    `json:"cooldown_minutes,omitempty"`
}
