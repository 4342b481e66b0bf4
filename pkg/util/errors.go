// Package util provides logging and the error taxonomy shared by newtmn.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps (or matches) one of these
// so callers can branch with errors.Is.
var (
	ErrParse            = errors.New("malformed driver output")
	ErrDiscoveryFailed  = errors.New("switch discovery failed")
	ErrNotFound         = errors.New("resource not found")
	ErrDriverCommand    = errors.New("driver command failed")
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError reports driver text that lacks the minimum structure a parser
// needs, such as a dump with no switches or a port listing with no ports.
type ParseError struct {
	Source string // what was being parsed, e.g. "dump" or "ports of s1"
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a parse error
func NewParseError(source, reason string) *ParseError {
	return &ParseError{Source: source, Reason: reason}
}

// DiscoveryError aborts registry construction. It names the switch and the
// stage ("ports" or "hardware-id") that failed and wraps the cause.
type DiscoveryError struct {
	Switch string
	Stage  string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover switch %s (%s): %v", e.Switch, e.Stage, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDiscoveryFailed) hold while Unwrap still
// exposes the underlying cause.
func (e *DiscoveryError) Is(target error) bool {
	return target == ErrDiscoveryFailed
}

// NewDiscoveryError creates a discovery error
func NewDiscoveryError(sw, stage string, err error) *DiscoveryError {
	return &DiscoveryError{Switch: sw, Stage: stage, Err: err}
}

// NotFoundError represents a failed lookup by name.
type NotFoundError struct {
	Kind string // "switch", "controller", "port"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// DriverCommandError carries a failure reported by the emulator driver for a
// connect or disconnect command. Output holds whatever text the driver
// returned; Err holds the transport error, if any.
type DriverCommandError struct {
	Command string
	Switch  string
	Output  string
	Err     error
}

func (e *DriverCommandError) Error() string {
	msg := fmt.Sprintf("driver command %s on %s failed", e.Command, e.Switch)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += " (" + firstLine(out) + ")"
	}
	return msg
}

func (e *DriverCommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDriverCommand, e.Err}
	}
	return []error{ErrDriverCommand}
}

// NewDriverCommandError creates a driver command error
func NewDriverCommandError(command, sw, output string, err error) *DriverCommandError {
	return &DriverCommandError{Command: command, Switch: sw, Output: output, Err: err}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
