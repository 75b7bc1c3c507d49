package gateway

import "fmt"

// MissingFieldError is returned by FetchRelated when the item has no value
// in the relation field.
type MissingFieldError struct {
	ItemID string
	Field  string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s field not found in item %s", e.Field, e.ItemID)
}

// StageError records which step of a pipeline failed. Its message is the
// message of the underlying error.
type StageError struct {
	Pipeline string
	Stage    string
	Err      error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(pipeline, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Pipeline: pipeline, Stage: stage, Err: err}
}
