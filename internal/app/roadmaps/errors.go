package roadmaps

import (
	"errors"
	"strings"
)

// Error is an application-layer error that can be mapped to an HTTP response.
// Message is the short title; Hint is the human-readable guidance shown alongside it.
type Error struct {
	Status  int
	Code    string
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind classifies generation failures for messaging only.
type ErrorKind string

const (
	KindAuthConfigInvalid ErrorKind = "auth_config_invalid"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindUnknown           ErrorKind = "unknown"
)

// errorClassifiers maps substrings of upstream error messages to kinds; first match wins.
// The upstream error surface is not a structured taxonomy, so this is best effort.
var errorClassifiers = []struct {
	substr string
	kind   ErrorKind
}{
	{"API_KEY_INVALID", KindAuthConfigInvalid},
	{"API key not valid", KindAuthConfigInvalid},
	{"QUOTA_EXCEEDED", KindQuotaExceeded},
	{"RESOURCE_EXHAUSTED", KindQuotaExceeded},
}

// Classify maps an upstream generation error to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	msg := err.Error()
	for _, c := range errorClassifiers {
		if strings.Contains(msg, c.substr) {
			return c.kind
		}
	}
	return KindUnknown
}

// GenerationError wraps a failure reported by the generation capability.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "roadmap generation failed (" + string(e.Kind) + ")"
	}
	return "roadmap generation failed (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KindOf returns the GenerationError kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}
