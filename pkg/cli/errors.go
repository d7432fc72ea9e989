package cli

import (
	"errors"
	"fmt"

	"mercator-hq/vesta/pkg/config"
)

// Exit codes returned by the vesta binary.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitFlagged = 4
)

// ConfigError represents an unusable configuration.
type ConfigError struct {
	Path  string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Cause)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError wraps a configuration failure for path.
func NewConfigError(path string, cause error) *ConfigError {
	return &ConfigError{Path: path, Cause: cause}
}

// CommandError represents a failed command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// UsageError reports invalid flags or arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError formats a UsageError.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ErrFlagged is returned by analyze --fail-on when a comment meets the
// threshold, so scripts can branch on the exit code.
var ErrFlagged = errors.New("comment flagged")

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	var configErr *ConfigError
	var validationErr config.ValidationError
	switch {
	case errors.Is(err, ErrFlagged):
		return ExitFlagged
	case errors.As(err, &usageErr):
		return ExitUsage
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitConfig
	default:
		return ExitError
	}
}
