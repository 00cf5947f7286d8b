package output

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/attributes"
	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/timesync"
)

// Span attribute keys.
const (
	AttrEventKind  = attribute.Key("file.event.kind")
	AttrEventID    = attribute.Key("file.event.id")
	AttrProcessPID = attribute.Key("process.pid")
	AttrThreadID   = attribute.Key("thread.id")
	AttrPath       = attribute.Key("file.path")
	AttrOldPath    = attribute.Key("file.old_path")
	AttrNewPath    = attribute.Key("file.new_path")
	AttrFileObject = attribute.Key("file.object")
)

// SpanSubscriber records each event as a span.
type SpanSubscriber struct {
	tracer    trace.Tracer
	evaluator *attributes.Evaluator
	traceIDs  *attributes.TraceIDEvaluator
	logger    *zap.Logger
}

// NewSpanSubscriber creates a span subscriber. evaluator and traceIDs may be
// nil.
func NewSpanSubscriber(tracer trace.Tracer, evaluator *attributes.Evaluator, traceIDs *attributes.TraceIDEvaluator, logger *zap.Logger) *SpanSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpanSubscriber{
		tracer:    tracer,
		evaluator: evaluator,
		traceIDs:  traceIDs,
		logger:    logger.Named("spans"),
	}
}

// SpanName returns the span name for kind.
func SpanName(kind etw.EventKind) string {
	return "file." + kind.String()
}

// Handle is a publisher.Subscriber.
func (s *SpanSubscriber) Handle(ev *etw.Event) error {
	if ev == nil || !ev.Header.Kind.IsFileKind() {
		return fmt.Errorf("no span for event")
	}

	ctx := context.Background()
	var warnings []attribute.KeyValue
	if s.traceIDs.Enabled() {
		traceID, w, err := s.traceIDs.EvaluateAndValidate(ev)
		if err != nil {
			s.logger.Debug("Trace ID expression failed, using a new trace", zap.Error(err))
		} else {
			ctx = trace.ContextWithRemoteSpanContext(ctx, rootSpanContext(traceID))
			warnings = w
		}
	}

	at := timesync.FiletimeToTime(ev.Header.Raw.Timestamp)

	_, span := s.tracer.Start(ctx, SpanName(ev.Header.Kind),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(at),
		trace.WithAttributes(eventAttributes(ev)...),
	)
	if len(warnings) > 0 {
		span.SetAttributes(warnings...)
	}
	if custom := s.evaluator.EvaluateCustomAttributes(ev); len(custom) > 0 {
		span.SetAttributes(custom...)
	}
	span.End(trace.WithTimestamp(at))

	return nil
}

func eventAttributes(ev *etw.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrEventKind.String(ev.Header.Kind.String()),
		AttrProcessPID.Int64(int64(ev.ProcessID())),
		AttrThreadID.Int64(int64(ev.Header.Raw.ThreadID)),
	}
	if ev.Header.EventID != "" {
		attrs = append(attrs, AttrEventID.String(ev.Header.EventID))
	}

	if r := ev.RenamePathData(); r != nil {
		attrs = append(attrs,
			AttrOldPath.String(r.OldFilePath),
			AttrNewPath.String(r.RenamedFilePath),
		)
	} else {
		path, _ := ev.Paths()
		attrs = append(attrs, AttrPath.String(path))
	}

	if obj, ok := ev.FileObject(); ok {
		attrs = append(attrs, AttrFileObject.String(fmt.Sprintf("0x%x", obj)))
	}
	return attrs
}

// rootSpanContext derives a stable synthetic parent for traceID so that
// every span of the trace hangs off the same root.
func rootSpanContext(traceID trace.TraceID) trace.SpanContext {
	var spanID trace.SpanID
	binary.BigEndian.PutUint64(spanID[:], binary.BigEndian.Uint64(traceID[8:])|1)

	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}
