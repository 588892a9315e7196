package response

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success wraps data in a successful envelope
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Error builds a failed envelope
func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
	}
}

// Error codes shared by handlers and middleware
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeForbidden   = "FORBIDDEN"
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
)

// BadRequest builds a VALIDATION_ERROR envelope
func BadRequest(message string) Response {
	return Error(CodeValidation, message)
}

// NotFound builds a NOT_FOUND envelope
func NotFound(message string) Response {
	return Error(CodeNotFound, message)
}

// Conflict builds a CONFLICT envelope
func Conflict(message string) Response {
	return Error(CodeConflict, message)
}

// Forbidden builds a FORBIDDEN envelope
func Forbidden(message string) Response {
	return Error(CodeForbidden, message)
}

// InternalError builds an INTERNAL_ERROR envelope; the cause is never exposed
func InternalError() Response {
	return Error(CodeInternal, "Internal server error")
}
