package maketype

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for malformed construction requests. Wrap-aware: match
// with errors.Is.
var (
	// ErrNoParams is returned by NewGeneric when the parameter list is empty.
	ErrNoParams = errors.New("maketype: generic definition needs at least one type parameter")
	// ErrParamRange is returned when a field references a parameter ordinal
	// outside the declared parameter list.
	ErrParamRange = errors.New("maketype: field references a type parameter outside the parameter list")
	// ErrArityMismatch is returned by Instantiate when the argument count
	// does not match the declared parameter count.
	ErrArityMismatch = errors.New("maketype: instantiation arity does not match the type parameters")
)

// ConstructionError reports a failed or inconsistent type construction.
// When Want/Got are set, the synthesized type did not expose exactly the
// requested field keys; that means construction silently dropped or merged a
// field and the definition must not be used.
type ConstructionError struct {
	TypeName string
	Want     []string // requested wire keys, declaration order
	Got      []string // keys actually visible on the synthesized type
	Cause    error
}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "maketype: constructing %s", e.TypeName)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Want != nil || e.Got != nil {
		fmt.Fprintf(&b, ": want fields [%s], got [%s]",
			strings.Join(e.Want, " "), strings.Join(e.Got, " "))
	}
	return b.String()
}

func (e *ConstructionError) Unwrap() error { return e.Cause }

// AsConstructionError extracts a ConstructionError from err when present.
func AsConstructionError(err error) (*ConstructionError, bool) {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
