package wgsl

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/engine/camera"
)

// includePrefix marks a line that the pre-processor replaces with a registered source.
//
// Syntax: //@oxy:include <name>
const includePrefix = "//@oxy:include"

// PreProcessor expands include directives in WGSL sources.
type PreProcessor interface {
	// Register adds or replaces a named include.
	//
	// Parameters:
	//   - name: the include name used after //@oxy:include
	//   - source: the WGSL text substituted for the directive
	Register(name, source string)

	// Process replaces every include directive with its registered source. Each include is
	// expanded at most once per call; later directives for the same name expand to nothing.
	//
	// Parameters:
	//   - source: the WGSL source containing include directives
	//
	// Returns:
	//   - string: the expanded source
	//   - error: if a directive is malformed or names an unknown include
	Process(source string) (string, error)
}

type preProcessor struct {
	mu       sync.Mutex
	includes map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with the engine's shared WGSL structs registered.
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		includes: map[string]string{
			"camera": camera.GPUCameraUniformSource,
		},
	}
}

func (p *preProcessor) Register(name, source string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.includes[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	p.mu.Lock()
	includes := maps.Clone(p.includes)
	p.mu.Unlock()

	seen := make(map[string]bool)
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}
		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: include takes exactly one name, got %d", i+1, len(args))
		}
		inc, ok := includes[args[0]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, args[0])
		}
		if !seen[args[0]] {
			seen[args[0]] = true
			out = append(out, strings.TrimRight(inc, "\n"))
		}
	}
	return strings.Join(out, "\n"), nil
}
