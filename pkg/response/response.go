package response

// ErrorBody is the envelope for middleware-level failures. Handlers reply
// with rest.ResponseError instead.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Error(code, message string, details any) ErrorBody {
	return ErrorBody{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
