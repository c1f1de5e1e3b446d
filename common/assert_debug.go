//go:build !release

package common

import "fmt"

// AssertionsEnabled reports whether Assert checks are compiled in.
const AssertionsEnabled = true

// Assert panics with a formatted message when cond is false. It guards against
// programmer misuse such as binding an uninitialized handle or overflowing a
// buffer upload. Building with the release tag turns it into a no-op.
//
// Parameters:
//   - cond: the condition that must hold
//   - format: a fmt format string describing the violation
//   - args: the format arguments
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	Logger().Error("assertion failed", "msg", msg)
	panic("assertion failed: " + msg)
}
