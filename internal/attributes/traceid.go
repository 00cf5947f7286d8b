package attributes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/file-tracer/internal/etw"
)

// TraceIDEvaluator computes the trace a span belongs to from an expression.
// Events yielding the same value share a trace.
type TraceIDEvaluator struct {
	program *vm.Program
}

// NewTraceIDEvaluator compiles exprStr. An empty expression leaves trace
// ids to the SDK.
func NewTraceIDEvaluator(exprStr string) (*TraceIDEvaluator, error) {
	if exprStr == "" {
		return &TraceIDEvaluator{}, nil
	}

	program, err := expr.Compile(exprStr, expr.Env(exampleEnv))
	if err != nil {
		return nil, fmt.Errorf("failed to compile trace-id expression: %w", err)
	}
	return &TraceIDEvaluator{program: program}, nil
}

// Enabled reports whether an expression is configured.
func (e *TraceIDEvaluator) Enabled() bool {
	return e != nil && e.program != nil
}

// EvaluateAndValidate returns the trace id for ev. A result that is not 32
// hex characters is hashed with SHA-256 and reported in the returned
// warning attributes. Without an expression the zero trace id is returned.
func (e *TraceIDEvaluator) EvaluateAndValidate(ev *etw.Event) (trace.TraceID, []attribute.KeyValue, error) {
	if !e.Enabled() {
		return trace.TraceID{}, nil, nil
	}
	if ev == nil {
		return trace.TraceID{}, nil, fmt.Errorf("no event")
	}

	output, err := expr.Run(e.program, Env(ev))
	if err != nil {
		return trace.TraceID{}, nil, fmt.Errorf("failed to evaluate trace-id expression: %w", err)
	}

	resultStr := fmt.Sprint(output)
	if len(resultStr) == 32 {
		if traceID, err := trace.TraceIDFromHex(resultStr); err == nil {
			return traceID, nil, nil
		}
	}

	hash := sha256.Sum256([]byte(resultStr))
	traceID, err := trace.TraceIDFromHex(hex.EncodeToString(hash[:16]))
	if err != nil {
		return trace.TraceID{}, nil, fmt.Errorf("failed to create trace ID from hash: %w", err)
	}

	warnings := []attribute.KeyValue{
		attribute.String("_trace_id_expr_result", resultStr),
		attribute.String("_trace_id_invalid_warning", fmt.Sprintf("Expression result %q is not a valid 32-char hex trace ID, used SHA-256 hash instead", resultStr)),
	}
	return traceID, warnings, nil
}
