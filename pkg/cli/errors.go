package cli

import "fmt"

// ConfigError is returned by commands whose configuration failed to load or
// validate. Field is empty when the loader reports several problems at once.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError wraps the failure of a shipdesk subcommand (render, lists)
// with the subcommand name, which main prints before exiting non-zero.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

// Unwrap exposes the pipeline or render error for errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError reports a configuration problem in field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError wraps err as a failure of command.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
