package extract

import "fmt"

// ConfigurationError reports an invalid extraction parameter or bounding
// box. Configuration is rejected before any field sampling starts.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// StageError wraps a failure from one pipeline stage with the stage's name.
// Only degenerate fields, invalid inputs, or cancellation abort a build;
// below-threshold stage results are silently omitted instead.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
