package lanyard

// Response is the envelope every Lanyard response is wrapped in.
// Exactly one of Data or Error is set, selected by Success
type Response struct {
	Success bool       `json:"success"`
	Data    *Presence  `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of the envelope
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// IsSuccess returns true only when the transport reported success and the
// body itself is tagged as successful
func IsSuccess(ok bool, body *Response) bool {
	return ok && body != nil && body.Success
}

// IsErrored is the complement of IsSuccess
func IsErrored(ok bool, body *Response) bool {
	return !IsSuccess(ok, body)
}
