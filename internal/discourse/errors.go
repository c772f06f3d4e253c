package discourse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a failed API call. Messages carries the forum's own error
// strings when the response body could be parsed.
type APIError struct {
	Operation  string
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "\n")
	}
	return fmt.Sprintf("%s failed (%d)", e.Operation, e.StatusCode)
}

// newAPIError extracts the error strings Discourse returns in the `errors`
// array or the `error` field; an unparseable body yields the generic message.
func newAPIError(operation string, statusCode int, body []byte) *APIError {
	apiError := &APIError{
		Operation:  operation,
		StatusCode: statusCode,
	}

	var decoded struct {
		Errors []string `json:"errors"`
		Error  string   `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if len(decoded.Errors) > 0 {
			apiError.Messages = decoded.Errors
		} else if decoded.Error != "" {
			apiError.Messages = []string{decoded.Error}
		}
	}
	return apiError
}
