package effect

import (
	"errors"
	"fmt"
)

// Status is a host status code.
type Status int

const (
	StatOK                    Status = 0
	StatFailed                Status = 1
	StatErrFatal              Status = 2
	StatErrUnknown            Status = 3
	StatErrMissingHostFeature Status = 4
	StatErrUnsupported        Status = 5
	StatErrExists             Status = 6
	StatErrFormat             Status = 7
	StatErrMemory             Status = 8
	StatErrBadHandle          Status = 9
	StatErrBadIndex           Status = 10
	StatErrValue              Status = 11
	StatReplyYes              Status = 12
	StatReplyNo               Status = 13
	StatReplyDefault          Status = 14
	StatErrImageFormat        Status = 1000
)

var statusNames = map[Status]string{
	StatOK:                    "OK",
	StatFailed:                "Failed",
	StatErrFatal:              "ErrFatal",
	StatErrUnknown:            "ErrUnknown",
	StatErrMissingHostFeature: "ErrMissingHostFeature",
	StatErrUnsupported:        "ErrUnsupported",
	StatErrExists:             "ErrExists",
	StatErrFormat:             "ErrFormat",
	StatErrMemory:             "ErrMemory",
	StatErrBadHandle:          "ErrBadHandle",
	StatErrBadIndex:           "ErrBadIndex",
	StatErrValue:              "ErrValue",
	StatReplyYes:              "ReplyYes",
	StatReplyNo:               "ReplyNo",
	StatReplyDefault:          "ReplyDefault",
	StatErrImageFormat:        "ErrImageFormat",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StatusError is the error form of a non-OK status. Message is the text
// shown to the user, if any; Err is the underlying cause, if any.
type StatusError struct {
	Status  Status
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Status, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Status, e.Err)
	default:
		return e.Status.String()
	}
}

func (e *StatusError) Unwrap() error { return e.Err }

// NewStatusError returns a StatusError without a user message.
func NewStatusError(s Status, err error) *StatusError {
	return &StatusError{Status: s, Err: err}
}

// StatusOf maps err to the status a host would receive. nil maps to
// StatOK and errors that carry no status map to StatFailed.
func StatusOf(err error) Status {
	if err == nil {
		return StatOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatFailed
}

// Framework errors.
var (
	// ErrUnknownParam is returned when a parameter name is not defined.
	ErrUnknownParam = errors.New("effect: unknown parameter")

	// ErrParamKind is returned when a parameter is accessed as the wrong type.
	ErrParamKind = errors.New("effect: parameter kind mismatch")

	// ErrNotAnimatable is returned when keyframes are set on a static parameter.
	ErrNotAnimatable = errors.New("effect: parameter is not animatable")

	// ErrUnsupportedContext is returned when a plugin does not support a context.
	ErrUnsupportedContext = errors.New("effect: unsupported context")

	// ErrDuplicatePlugin is returned when a registry already holds an identifier/version.
	ErrDuplicatePlugin = errors.New("effect: duplicate plugin")

	// ErrPluginNotFound is returned by Registry.Lookup.
	ErrPluginNotFound = errors.New("effect: plugin not found")

	// ErrInvalidDescriptor wraps descriptor validation failures.
	ErrInvalidDescriptor = errors.New("effect: invalid descriptor")
)
