package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/mrzor/file-tracer/internal/attributes"
	"github.com/mrzor/file-tracer/internal/config"
	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/timesync"
)

var eventTime = time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return sr, tp
}

func rename(pid uint32) *etw.Event {
	return &etw.Event{
		Header: etw.Header{
			Kind:    etw.KindRenamePath,
			EventID: "evt-1",
			Raw:     etw.RecordHeader{ProcessID: pid, ThreadID: 9, Timestamp: timesync.UnixToFiletime(eventTime)},
		},
		Payload: &etw.RenamePathData{
			OldFilePath:     `D:\docs\a.txt`,
			RenamedFilePath: `D:\docs\b.txt`,
			FileObject:      0xABCD,
		},
	}
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestSpanSubscriber_Rename(t *testing.T) {
	sr, tp := newRecorder(t)
	sub := NewSpanSubscriber(tp.Tracer("test"), nil, nil, zaptest.NewLogger(t))

	require.NoError(t, sub.Handle(rename(4)))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "file.RenamePath", span.Name())
	assert.True(t, span.StartTime().Equal(eventTime))
	assert.True(t, span.EndTime().Equal(eventTime))

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "RenamePath", attrs[AttrEventKind].AsString())
	assert.Equal(t, int64(4), attrs[AttrProcessPID].AsInt64())
	assert.Equal(t, int64(9), attrs[AttrThreadID].AsInt64())
	assert.Equal(t, "evt-1", attrs[AttrEventID].AsString())
	assert.Equal(t, `D:\docs\a.txt`, attrs[AttrOldPath].AsString())
	assert.Equal(t, `D:\docs\b.txt`, attrs[AttrNewPath].AsString())
	assert.Equal(t, "0xabcd", attrs[AttrFileObject].AsString())
	assert.NotContains(t, attrs, AttrPath)
}

func TestSpanSubscriber_DeletePath(t *testing.T) {
	sr, tp := newRecorder(t)
	sub := NewSpanSubscriber(tp.Tracer("test"), nil, nil, nil)

	ev := &etw.Event{
		Header:  etw.Header{Kind: etw.KindDeletePath, Raw: etw.RecordHeader{ProcessID: 4, Timestamp: timesync.UnixToFiletime(eventTime)}},
		Payload: &etw.DeletePathData{FilePath: `C:\tmp\x`},
	}
	require.NoError(t, sub.Handle(ev))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, `C:\tmp\x`, attrs[AttrPath].AsString())
	assert.NotContains(t, attrs, AttrFileObject)
	assert.NotContains(t, attrs, AttrEventID)
}

func TestSpanSubscriber_CustomAttributes(t *testing.T) {
	sr, tp := newRecorder(t)
	evaluator, err := attributes.NewEvaluator([]config.CustomAttribute{
		{Name: "file.extension_changed", Expression: `!(old_path endsWith ".txt" && new_path endsWith ".txt")`},
	}, nil)
	require.NoError(t, err)

	sub := NewSpanSubscriber(tp.Tracer("test"), evaluator, nil, nil)
	require.NoError(t, sub.Handle(rename(4)))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "false", attrs["file.extension_changed"].AsString())
}

func TestSpanSubscriber_TraceIDGrouping(t *testing.T) {
	sr, tp := newRecorder(t)
	traceIDs, err := attributes.NewTraceIDEvaluator(`"pid-" + string(pid)`)
	require.NoError(t, err)

	sub := NewSpanSubscriber(tp.Tracer("test"), nil, traceIDs, nil)
	require.NoError(t, sub.Handle(rename(4)))
	require.NoError(t, sub.Handle(rename(4)))
	require.NoError(t, sub.Handle(rename(1200)))

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, spans[0].SpanContext().TraceID(), spans[1].SpanContext().TraceID())
	assert.NotEqual(t, spans[0].SpanContext().TraceID(), spans[2].SpanContext().TraceID())
	assert.Equal(t, spans[0].Parent().SpanID(), spans[1].Parent().SpanID())
	assert.True(t, spans[0].Parent().IsRemote())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "pid-4", attrs["_trace_id_expr_result"].AsString())
}

func TestSpanSubscriber_RejectsNonFileEvents(t *testing.T) {
	sr, tp := newRecorder(t)
	sub := NewSpanSubscriber(tp.Tracer("test"), nil, nil, nil)

	assert.Error(t, sub.Handle(nil))
	assert.Error(t, sub.Handle(&etw.Event{Header: etw.Header{Kind: etw.KindProcessStart}, Payload: &etw.ProcessStartData{}}))
	assert.Empty(t, sr.Ended())
}

func TestSpanName(t *testing.T) {
	assert.Equal(t, "file.CreateNewFile", SpanName(etw.KindCreateNewFile))
	assert.Equal(t, "file.DeletePath", SpanName(etw.KindDeletePath))
}
