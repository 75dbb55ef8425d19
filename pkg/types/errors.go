package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotImplemented is returned by capability hooks that a concrete backend must provide
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknownChannel is wrapped by ParseError when a frequency has no channel number
	ErrUnknownChannel = errors.New("unknown channel")
)

// ValidationError reports malformed or out-of-range input
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExecutionError reports an external command that failed to start, exited
// non-zero or was killed after its deadline
type ExecutionError struct {
	Command  string
	Args     []string
	ExitCode int // -1 if the process never exited normally
	Stderr   string
	Timeout  bool
	Err      error
}

func (e *ExecutionError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	var b strings.Builder
	if e.Timeout {
		fmt.Fprintf(&b, "command %q timed out", cmdline)
	} else {
		fmt.Fprintf(&b, "command %q failed with exit code %d", cmdline, e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ParseError reports tool output or user text that could not be understood
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %q", e.Input)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
