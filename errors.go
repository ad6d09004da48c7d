package stacker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for API failures. Use errors.Is() to check; the full
// detail stays on the wrapped *APIError.
var (
	ErrBadRequest         = errors.New("stacker: bad request")
	ErrValidation         = errors.New("stacker: validation failed")
	ErrUnauthorized       = errors.New("stacker: unauthorized")
	ErrNotFound           = errors.New("stacker: not found")
	ErrGroupStartNotFound = errors.New("stacker: group start not found")
	ErrInternal           = errors.New("stacker: internal error")
)

var codeSentinels = map[string]error{
	"bad_request":           ErrBadRequest,
	"validation_failed":     ErrValidation,
	"unauthorized":          ErrUnauthorized,
	"not_found":             ErrNotFound,
	"group_start_not_found": ErrGroupStartNotFound,
	"internal_error":        ErrInternal,
}

// APIError is a non-2xx API response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stacker: %s (http %d): %s", e.Code, e.Status, e.Message)
}

// Is matches the error's code against the package sentinels.
func (e *APIError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil || len(body) == 0 {
		apiErr.Message = http.StatusText(res.StatusCode)
		return apiErr
	}

	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err != nil || wire.Code == "" {
		apiErr.Message = string(body)
		return apiErr
	}
	apiErr.Code = wire.Code
	apiErr.Message = wire.Message
	return apiErr
}
