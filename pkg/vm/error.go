// Package vm provides error handling for the RBGN interpreter.
package vm

import (
	"fmt"

	"github.com/zurustar/rbgn/pkg/command"
)

// ErrorType represents the type of runtime error.
// Every runtime error is fatal: the interpreter stops and the error is
// returned to the caller.
type ErrorType string

const (
	ErrorUnknownCommand  ErrorType = "UNKNOWN_COMMAND"
	ErrorEmptyString     ErrorType = "EMPTY_STRING"
	ErrorInvalidArgument ErrorType = "INVALID_ARGUMENT"
	ErrorInput           ErrorType = "INPUT_ERROR"
	ErrorNestedLoop      ErrorType = "NESTED_LOOP"
	ErrorInterrupted     ErrorType = "INTERRUPTED"
)

// RuntimeError represents a runtime error in the VM.
type RuntimeError struct {
	Type    ErrorType
	Command string // command name, empty if not applicable
	Message string
	Line    int // Line number if available, -1 otherwise
	Err     error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Command != "" {
		msg = fmt.Sprintf("%s: %s", e.Command, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s at line %d", e.Type, msg, e.Line)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// SourceLine returns the script line the error refers to.
func (e *RuntimeError) SourceLine() int {
	return e.Line
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    -1,
	}
}

func newCommandError(errType ErrorType, cmd command.Command, message string) *RuntimeError {
	line := cmd.Line
	if line == 0 {
		line = -1
	}
	return &RuntimeError{
		Type:    errType,
		Command: cmd.Name,
		Message: message,
		Line:    line,
	}
}

// NewUnknownCommandError creates an unknown command error.
func NewUnknownCommandError(cmd command.Command) *RuntimeError {
	return newCommandError(ErrorUnknownCommand, cmd, "unknown command")
}

// NewCompileOnlyError is returned for a command that only the shell compiler knows.
func NewCompileOnlyError(cmd command.Command) *RuntimeError {
	return newCommandError(ErrorUnknownCommand, cmd, "command is only available when compiling (run without -i)")
}

// NewEmptyStringError is returned when a character is taken from an empty variable.
func NewEmptyStringError(cmd command.Command, variable string) *RuntimeError {
	return newCommandError(ErrorEmptyString, cmd, fmt.Sprintf("variable '%s' is empty", variable))
}

// NewInvalidArgumentError creates an invalid argument error.
func NewInvalidArgumentError(cmd command.Command, arg string, cause error) *RuntimeError {
	e := newCommandError(ErrorInvalidArgument, cmd, fmt.Sprintf("invalid argument '%s'", arg))
	e.Err = cause
	return e
}

// NewInputError creates an error for a failed or exhausted standard input read.
func NewInputError(cmd command.Command, cause error) *RuntimeError {
	e := newCommandError(ErrorInput, cmd, fmt.Sprintf("failed to read input: %v", cause))
	e.Err = cause
	return e
}

// NewNestedLoopError is returned when a loop command runs inside a replayed block.
func NewNestedLoopError(cmd command.Command) *RuntimeError {
	return newCommandError(ErrorNestedLoop, cmd, "loops cannot be nested")
}

// NewInterruptedError wraps a context cancellation.
func NewInterruptedError(cause error) *RuntimeError {
	e := NewRuntimeError(ErrorInterrupted, fmt.Sprintf("execution interrupted: %v", cause))
	e.Err = cause
	return e
}
