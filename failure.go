package conventus

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete matches every Incomplete failure under errors.Is.
	ErrIncomplete = errors.New("conventus: incomplete")
	// ErrInvalid is the cause recorded when Fail is given a nil cause.
	ErrInvalid = errors.New("conventus: invalid parts")
)

// Kind tags a Failure.
type Kind uint8

const (
	// KindIncomplete: too few parts to decide; not a defect.
	KindIncomplete Kind = iota + 1
	// KindError: enough parts, but their content is invalid.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Failure is the error value returned by composers.
type Failure struct {
	Kind  Kind
	Cause error
}

// Incomplete reports that the sequence holds too few parts. Each call returns
// a new value; match it with IsIncomplete or errors.Is(err, ErrIncomplete).
func Incomplete() error {
	return &Failure{Kind: KindIncomplete}
}

// Fail promotes cause to an Error failure. A cause that already is a *Failure
// is returned as is.
func Fail(cause error) error {
	if cause == nil {
		return &Failure{Kind: KindError, Cause: ErrInvalid}
	}
	var f *Failure
	if errors.As(cause, &f) {
		return cause
	}
	return &Failure{Kind: KindError, Cause: cause}
}

// Failf is Fail(fmt.Errorf(format, args...)).
func Failf(format string, args ...any) error {
	return Fail(fmt.Errorf(format, args...))
}

func (f *Failure) Error() string {
	if f.Kind == KindIncomplete {
		return ErrIncomplete.Error()
	}
	if f.Cause == nil {
		return ErrInvalid.Error()
	}
	return f.Cause.Error()
}

func (f *Failure) Unwrap() error {
	if f.Kind == KindIncomplete {
		return ErrIncomplete
	}
	return f.Cause
}

// Incomplete reports whether f is the Incomplete variant.
func (f *Failure) Incomplete() bool {
	return f != nil && f.Kind == KindIncomplete
}

// AsFailure extracts the *Failure carried by err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsIncomplete reports whether err means "retry with more parts".
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// IsInvalid reports whether err is a permanent Error failure.
func IsInvalid(err error) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == KindError
}
