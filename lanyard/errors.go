package lanyard

import "net/http"

// Lanyard error codes seen in the wild
const (
	CodeUserNotMonitored = "user_not_monitored"
	CodeInvalidSnowflake = "invalid_snowflake"
)

// APIError is returned when Lanyard answers but the answer is not a success.
//
// The request and response are the ones FetchUser made. The response body has
// already been read and closed
type APIError struct {
	Request  *http.Request
	Response *http.Response
	Body     ErrorBody
}

func (e *APIError) Error() string {
	if e.Body.Message == "" && e.Response != nil {
		return e.Response.Status
	}

	return e.Body.Message
}

// StatusCode returns the HTTP status Lanyard responded with
func (e *APIError) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}
