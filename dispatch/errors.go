package dispatch

import "fmt"

// CallError is the single error type for provider call failures: transport
// errors carry the HTTP status and response body, parse and network errors
// carry a readable message with Status left zero.
type CallError struct {
	Status  int
	Message string
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return "API call failed: " + e.Message
}

// MissingKeyError marks a provider call attempted without a configured
// credential. It is a configuration problem, not a network one, and is never
// retried.
type MissingKeyError struct {
	Provider string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("API key for %s is missing (set it in ~/.lumen/config.yaml or the environment)", e.Provider)
}

func wrapNetErr(err error) error {
	return &CallError{Message: err.Error()}
}
