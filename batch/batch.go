// Package batch runs a fallible operation over a list of items and collects
// every failure instead of stopping at the first one.
//
// The save pipeline relies on this to back up, write, restore and clean all
// fragments of a dictionary even when some of them fail, and then decide
// about rollback with the complete picture.
package batch

import (
	"fmt"
	"strings"
)

// Failure associates an item with the error its operation returned.
type Failure[T any] struct {
	Item T
	Err  error
}

func (f Failure[T]) Error() string { return f.Err.Error() }

func (f Failure[T]) Unwrap() error { return f.Err }

// Run calls action for every item in order. Errors (and panics) are
// recorded with their item; execution always continues with the next item.
func Run[T any](items []T, action func(T) error) []Failure[T] {
	var failures []Failure[T]
	for _, item := range items {
		if err := call(item, action); err != nil {
			failures = append(failures, Failure[T]{Item: item, Err: err})
		}
	}
	return failures
}

func call[T any](item T, action func(T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return action(item)
}

// Error aggregates the failures of one batch operation.
type Error[T any] struct {
	// Op describes the operation ("backup", "restore").
	Op       string
	Failures []Failure[T]
	// Name renders an item in the error message.
	Name func(T) string
}

func (e *Error[T]) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed for %d item(s)", e.Op, len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  ")
		if e.Name != nil {
			b.WriteString(e.Name(f.Item))
			b.WriteString(": ")
		}
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Unwrap exposes every underlying error to errors.Is and errors.As.
func (e *Error[T]) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Join returns an *Error for failures, or nil when there are none.
func Join[T any](op string, failures []Failure[T], name func(T) string) error {
	if len(failures) == 0 {
		return nil
	}
	return &Error[T]{Op: op, Failures: failures, Name: name}
}

// Items returns the items of the failures in order.
func Items[T any](failures []Failure[T]) []T {
	items := make([]T, len(failures))
	for i, f := range failures {
		items[i] = f.Item
	}
	return items
}
