package cli

import (
	"errors"
	"fmt"

	"mercator-hq/chatclient/pkg/transport"
)

// Exit codes returned by the chatclient binary.
const (
	ExitOK           = 0 // Command succeeded.
	ExitFailure      = 1 // Generic failure.
	ExitUsage        = 2 // Bad flags, arguments or configuration.
	ExitNetwork      = 3 // The API could not be reached.
	ExitUnauthorized = 4 // The API rejected the credential.
	ExitAPI          = 5 // The API answered with an error or an undecodable body.
)

// UsageError reports invalid arguments or configuration.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string, err error) *UsageError {
	return &UsageError{
		Message: message,
		Err:     err,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}

	switch transport.Outcome(err) {
	case transport.OutcomeNetwork:
		return ExitNetwork
	case transport.OutcomeUnauthorized:
		return ExitUnauthorized
	case transport.OutcomeAPIError, transport.OutcomeDecode:
		return ExitAPI
	default:
		return ExitFailure
	}
}
