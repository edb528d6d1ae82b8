package codegen

import (
	"fmt"

	"github.com/pingcap/errors"
)

// ErrKind classifies a failed run.
type ErrKind int

const (
	ErrKindConfig ErrKind = iota + 1
	ErrKindPlan
	ErrKindCompiler
	ErrKindFilesystem
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfig:
		return "config"
	case ErrKindPlan:
		return "plan"
	case ErrKindCompiler:
		return "compiler"
	case ErrKindFilesystem:
		return "filesystem"
	}
	return "unknown"
}

// Error is the root cause of every failure returned by this package.
type Error struct {
	Kind ErrKind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrKind, step string, format string, args ...any) error {
	return errors.Trace(&Error{Kind: kind, Step: step, Err: fmt.Errorf(format, args...)})
}

func wrapError(kind ErrKind, step string, err error) error {
	return errors.Trace(&Error{Kind: kind, Step: step, Err: err})
}

// KindOf returns the kind of err, or 0 if err did not originate here.
func KindOf(err error) ErrKind {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return 0
}
