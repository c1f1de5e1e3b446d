package wgsl

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate runs the source through the naga front end, parsing and lowering it to IR.
// The error carries line and column information when the source is malformed.
func Validate(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("wgsl: %w", err)
	}
	if _, err := naga.LowerWithSource(ast, source); err != nil {
		return fmt.Errorf("wgsl: %w", err)
	}
	return nil
}
