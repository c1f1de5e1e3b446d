//go:build release

package common

// AssertionsEnabled reports whether Assert checks are compiled in.
const AssertionsEnabled = false

// Assert is compiled out in release builds.
func Assert(cond bool, format string, args ...any) {}
