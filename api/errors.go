package api

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// Error is the single failure shape surfaced by the client. Exactly one of
// the three categories applies: a server response with a non-2xx status, a
// request that never got a response, or a request that could not be sent.
type Error struct {
	Message      string
	Status       int
	Data         map[string]any
	AWSError     bool
	NetworkError bool
	ClientError  bool
}

func (e *Error) Error() string {
	return e.Message
}

// Known AWS failure substrings and the messages shown instead of the raw
// backend detail.
var awsErrorMessages = []struct {
	substr  string
	message string
}{
	{"AccessDenied", "AWS access denied. Please check your credentials and permissions."},
	{"InvalidClientTokenId", "Invalid AWS access key. Please verify your credentials."},
	{"UnauthorizedOperation", "Your AWS credentials are not authorized to perform this operation."},
	{"ResourceNotFoundException", "The requested AWS resource was not found."},
}

// serverError builds an Error from a non-2xx response body. FastAPI-style
// backends put the human-readable message under "detail".
func serverError(status int, body []byte) *Error {
	var data map[string]any
	_ = json.Unmarshal(body, &data)

	message := "An error occurred with the API."
	if detail, ok := data["detail"].(string); ok && detail != "" {
		message = detail
	}

	apiErr := &Error{
		Message: message,
		Status:  status,
		Data:    data,
	}

	for _, known := range awsErrorMessages {
		if strings.Contains(message, known.substr) {
			apiErr.AWSError = true
			apiErr.Message = known.message
			break
		}
	}

	return apiErr
}

func networkError() *Error {
	return &Error{
		Message:      "No response from server. Please check your network connection.",
		Status:       0,
		NetworkError: true,
	}
}

func clientError(err error) *Error {
	message := "An unexpected error occurred."
	if err != nil {
		message = err.Error()
	}
	return &Error{
		Message:     message,
		Status:      0,
		ClientError: true,
	}
}

// transportError classifies an error returned before any HTTP status was
// received. A *url.Error means the request went out but nothing came back;
// anything else means the request could not be constructed or sent.
func transportError(err error) *Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return networkError()
	}
	return clientError(err)
}

// AsError unwraps err into the client's Error shape, if it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
