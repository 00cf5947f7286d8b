package attributes

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mrzor/file-tracer/internal/etw"
)

// Filter selects events with a boolean expression. An empty expression
// matches every event.
type Filter struct {
	program *vm.Program
	source  string
}

// NewFilter compiles source.
func NewFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(exampleEnv), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", source, err)
	}
	return &Filter{program: program, source: source}, nil
}

// Match reports whether ev satisfies the filter.
func (f *Filter) Match(ev *etw.Event) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, Env(ev))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", f.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
