package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is returned for every failed backend call.
// StatusCode is zero when the request never got a response.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request failed before a response arrived
func (e *APIError) Transport() bool {
	return e.StatusCode == 0
}

// Detail extracts the server-supplied detail message from err, if any
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Message returns the server detail when present, otherwise fallback
func Message(err error, fallback string) string {
	if d := Detail(err); d != "" {
		return d
	}
	return fallback
}

// parseDetail reads {"detail": "..."} from a failure body.
// Non-string details (validation error arrays) are ignored.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
