package ai

import (
	"errors"
	"fmt"
)

// ConfigurationError reports missing or invalid settings for the AI feature,
// such as an absent credential or a missing worker script.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai configuration: %s: %v", e.Message, e.Err)
	}
	return "ai configuration: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DependencyError reports that the worker runtime cannot load a required
// library (the capability check failed).
type DependencyError struct {
	Message string
	Stderr  string
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai dependency: %s: %v", e.Message, e.Err)
	}
	return "ai dependency: " + e.Message
}

func (e *DependencyError) Unwrap() error { return e.Err }

// AnalysisError reports that the worker ran but its result is unusable:
// it could not be started, was killed, exited non-zero, or printed
// something other than one JSON document.
type AnalysisError struct {
	Message  string
	ExitCode int
	Stderr   string
	Output   string
	Err      error
}

func (e *AnalysisError) Error() string {
	msg := "ai analysis failed: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// IsFeatureError reports whether err is one of the AI error kinds. These
// only disable relevance filtering; they never abort a pack.
func IsFeatureError(err error) bool {
	var (
		cfgErr *ConfigurationError
		depErr *DependencyError
		anaErr *AnalysisError
	)
	return errors.As(err, &cfgErr) || errors.As(err, &depErr) || errors.As(err, &anaErr)
}
