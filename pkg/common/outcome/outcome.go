// Package outcome classifies the failures the engine can report.
//
// EmptyInput and UnsupportedFormat are expected, user-facing results. InvalidInput is raised
// before computation starts. ComputationFailure wraps anything unexpected that happened while
// computing. All four carry a message that can be shown to the end user as-is.
package outcome

import (
	"errors"
	"fmt"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
)

type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindEmptyInput         Kind = "empty_input"
	KindUnsupportedFormat  Kind = "unsupported_format"
	KindComputationFailure Kind = "computation_failure"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Soft reports whether the failure is an ordinary user-facing result rather than a fault.
func (e *Error) Soft() bool {
	return e.Kind == KindEmptyInput || e.Kind == KindUnsupportedFormat
}

func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func EmptyInput(message string) *Error {
	return &Error{Kind: KindEmptyInput, Message: message}
}

func UnsupportedFormat(message string) *Error {
	return &Error{Kind: KindUnsupportedFormat, Message: message}
}

// ComputationFailure keeps the cause both wrapped and in the displayable message.
func ComputationFailure(prefix string, cause error) *Error {
	msg := prefix
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", prefix, cause)
	}
	return &Error{Kind: KindComputationFailure, Message: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// SoftFailure converts any error into a value the presentation layer can render directly.
// Errors outside the taxonomy are reported as computation failures.
func SoftFailure(err error) models.SoftFailure {
	var oe *Error
	if errors.As(err, &oe) {
		return models.SoftFailure{Kind: string(oe.Kind), Message: oe.Message}
	}
	return models.SoftFailure{
		Kind:    string(KindComputationFailure),
		Message: fmt.Sprintf("分析失败: %v", err),
	}
}

// Recover turns a panic into a ComputationFailure stored in *errp. Use it deferred at an
// operation boundary.
func Recover(prefix string, errp *error) {
	if r := recover(); r != nil {
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		*errp = ComputationFailure(prefix, cause)
	}
}
