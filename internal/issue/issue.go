// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
)

// InternalFaultStatus is the exit status for errors outside the taxonomy.
const InternalFaultStatus = 1

type (
	// Error is a reportable failure or warning. Build it with New.
	Error struct {
		payload     Payload
		skipLogfile bool
		cause       error
	}

	// Option adjusts an Error at construction.
	Option func(*Error)
)

// New builds an Error for p. The skip-logfile flag starts at the class
// default; UpgradeTool starts at true.
func New(p Payload, opts ...Option) *Error {
	e := &Error{payload: p.clone()}
	e.skipLogfile = p.Kind().Class().SkipsLogfile() || p.Kind() == UpgradeToolKind
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithSkipLogfile overrides the skip-logfile flag. Only command and input
// failures honor it; the other classes have a fixed flag.
func WithSkipLogfile(skip bool) Option {
	return func(e *Error) {
		switch e.Class() {
		case ClassCommand, ClassInput:
			e.skipLogfile = skip
		}
	}
}

// WithCause records the raw error that was translated into this entry.
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

// Commandf builds a generic CommandFailed entry.
func Commandf(format string, args ...any) *Error {
	return New(CommandFailed{Message: fmt.Sprintf(format, args...)})
}

// Config builds a BadConfig entry wrapping cause.
func Config(cause error, format string, args ...any) *Error {
	return New(BadConfig{Message: fmt.Sprintf(format, args...)}, WithCause(cause))
}

// Error returns the rendered message.
func (e *Error) Error() string { return message(e.payload) }

// Unwrap returns the raw error this entry was translated from, if any.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the entry's kind.
func (e *Error) Kind() Kind { return e.payload.Kind() }

// Class returns the entry's class.
func (e *Error) Class() Class { return e.Kind().Class() }

// Code returns the entry's numeric code.
func (e *Error) Code() int { return e.Kind().Code() }

// SkipLogfile reports whether the run's transcript should not be saved.
func (e *Error) SkipLogfile() bool { return e.skipLogfile }

// IsWarning reports whether the entry is reported without failing the run.
func (e *Error) IsWarning() bool { return e.Class() == ClassWarning }

// Payload returns a copy of the entry's payload.
func (e *Error) Payload() Payload { return e.payload.clone() }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err's chain holds an entry of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind() == k
}

// ExitStatus maps err to a process exit status. Nil and warnings give 0,
// entries give their code folded into 0..255, anything else is an internal
// fault.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	e, ok := As(err)
	if !ok {
		return InternalFaultStatus
	}
	if e.IsWarning() {
		return 0
	}
	return ((e.Code() % 256) + 256) % 256
}
