package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNetwork marks transport failures: the backend was never reached or the
// response could not be read.
var ErrNetwork = errors.New("network error")

// ErrorCode is the machine-readable marker the backend puts in error bodies.
type ErrorCode string

const (
	CodePendingApproval ErrorCode = "PENDING_APPROVAL"
)

type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// UnmarshalJSON accepts plain strings as well as {field|param|path, message|msg}.
func (f *FieldError) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		f.Message = text
		return nil
	}

	var obj struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Field = firstNonEmpty(obj.Field, obj.Param, obj.Path)
	f.Message = firstNonEmpty(obj.Message, obj.Msg)
	return nil
}

type ErrorBody struct {
	Error  string       `json:"error"`
	Code   ErrorCode    `json:"code,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// APIError is the normalized shape of every failed backend call.
// Status is zero for transport failures.
type APIError struct {
	Status int
	Data   ErrorBody
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msg := e.Data.Error
	if msg == "" && len(e.Data.Errors) > 0 {
		msg = e.Data.Errors[0].Message
	}
	if e.Data.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Data.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsPendingApproval(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Data.Code == CodePendingApproval
}

func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// Message returns the text shown next to the control that triggered err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return err.Error()
	}
	if apiErr.Data.Error != "" {
		return apiErr.Data.Error
	}
	if len(apiErr.Data.Errors) > 0 {
		msgs := make([]string, 0, len(apiErr.Data.Errors))
		for _, fe := range apiErr.Data.Errors {
			msgs = append(msgs, fe.Message)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
