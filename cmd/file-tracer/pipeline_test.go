package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/mrzor/file-tracer/internal/config"
	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/filetable"
	"github.com/mrzor/file-tracer/internal/relay"
	"github.com/mrzor/file-tracer/internal/tracefile"
	"github.com/mrzor/file-tracer/internal/volume"
)

type fakeNATS struct {
	mu       sync.Mutex
	messages []relay.Message
}

func (f *fakeNATS) Publish(_ string, data []byte) error {
	var msg relay.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
	return nil
}

func testConfig(rowFilter string) *config.Config {
	return &config.Config{
		EnableFileEvents: true,
		CacheCapacity:    16,
		QueueSize:        64,
		RowFilter:        rowFilter,
		NATSSubject:      "file-events",
	}
}

func testNormalizer() *volume.Normalizer {
	return volume.New(map[string]string{
		`\Device\HarddiskVolume1`: "C:",
		`\Device\HarddiskVolume3`: "D:",
	})
}

func replaySession(t *testing.T, opts pipelineOptions) *pipeline {
	t.Helper()

	p, err := newPipeline(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, p.stream.Start(context.Background()))

	ctx := context.Background()
	submit := func(rec etw.RawRecord) bool { return p.stream.SubmitWait(ctx, rec) }
	_, err = tracefile.ReplayFile(ctx, "testdata/session.jsonl", submit, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, p.stream.Stop())
	return p
}

func TestPipeline_SystemProcessRows(t *testing.T) {
	rows := filetable.NewMemoryWriter(0)

	p := replaySession(t, pipelineOptions{
		cfg:        testConfig("pid == 4"),
		normalizer: testNormalizer(),
		rows:       rows,
		registry:   prometheus.NewRegistry(),
	})

	got := rows.Rows()
	require.Len(t, got, 3)

	assert.Equal(t, "CreateNewFile", got[0].Type)
	assert.Equal(t, `D:\docs\new.txt`, got[0].Path)

	assert.Equal(t, "RenamePath", got[1].Type)
	assert.Equal(t, `D:\docs\a.txt`, got[1].Path)
	assert.Equal(t, `D:\docs\b.txt`, got[1].NewPath)
	assert.Equal(t, int64(1623758401), got[1].DateTime)
	assert.Equal(t, int64(132682320010000000), got[1].TimeWindows)

	assert.Equal(t, "DeletePath", got[2].Type)
	assert.Equal(t, `C:\tmp\y`, got[2].Path)

	assert.Equal(t, 1, p.cache.Len())
	assert.Equal(t, uint64(5), p.stream.Processed())
}

func TestPipeline_AllSinks(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	nc := &fakeNATS{}
	rows := filetable.NewMemoryWriter(0)

	p := replaySession(t, pipelineOptions{
		cfg:        testConfig(""),
		attributes: []config.CustomAttribute{{Name: "file.dir", Expression: `new_path`}},
		normalizer: testNormalizer(),
		rows:       rows,
		registry:   prometheus.NewRegistry(),
		tracer:     tp.Tracer("test"),
		nats:       nc,
	})

	assert.Equal(t, []string{"table", "spans", "nats"}, p.publisher.Subscribers())

	// Create is cached only, the unknown id never leaves the classifier.
	assert.Len(t, rows.Rows(), 4)
	assert.Len(t, sr.Ended(), 4)
	require.Len(t, nc.messages, 4)

	rename := nc.messages[1]
	assert.Equal(t, "RenamePath", rename.Kind)
	assert.Equal(t, `D:\docs\a.txt`, rename.OldPath)
	assert.Equal(t, `D:\docs\b.txt`, rename.NewPath)
	assert.Equal(t, "0xabcd", rename.FileObject)
	assert.NotEmpty(t, rename.EventID)
	assert.Equal(t, "2021-06-15 12:00:01 UTC", rename.DateTime)
}

func writeRenameTrace(t *testing.T, pairs int) string {
	t.Helper()

	var b strings.Builder
	for i := 0; i < pairs; i++ {
		fmt.Fprintf(&b, `{"id":12,"pid":4,"tid":8,"timestamp":132682320000000000,"fields":{"FileName":"\\Device\\HarddiskVolume3\\old%d.txt","FileObject":"0x%x"}}`+"\n", i, 0x1000+i)
		fmt.Fprintf(&b, `{"id":27,"pid":4,"tid":8,"timestamp":132682320010000000,"fields":{"FilePath":"\\Device\\HarddiskVolume3\\new%d.txt","FileObject":"0x%x"}}`+"\n", i, 0x1000+i)
	}

	path := filepath.Join(t.TempDir(), "renames.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestPipeline_ReplayLargerThanQueue(t *testing.T) {
	const pairs = 40

	cfg := testConfig("")
	cfg.QueueSize = 2
	rows := filetable.NewMemoryWriter(0)

	p, err := newPipeline(pipelineOptions{
		cfg:        cfg,
		normalizer: testNormalizer(),
		rows:       rows,
		registry:   prometheus.NewRegistry(),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	p.publisher.Subscribe("slow", func(*etw.Event) error {
		time.Sleep(time.Millisecond)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, p.stream.Start(ctx))
	stats, err := tracefile.ReplayFile(ctx, writeRenameTrace(t, pairs), func(rec etw.RawRecord) bool {
		return p.stream.SubmitWait(ctx, rec)
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, p.stream.Stop())

	assert.Equal(t, 2*pairs, stats.Accepted)
	assert.Equal(t, uint64(0), p.stream.Dropped())

	got := rows.Rows()
	require.Len(t, got, pairs)
	for i, row := range got {
		assert.Equal(t, "RenamePath", row.Type)
		assert.Equal(t, fmt.Sprintf(`D:\old%d.txt`, i), row.Path)
		assert.Equal(t, fmt.Sprintf(`D:\new%d.txt`, i), row.NewPath)
	}
}

func TestPipeline_InvalidRowFilter(t *testing.T) {
	_, err := newPipeline(pipelineOptions{
		cfg:      testConfig("path +"),
		rows:     filetable.NewMemoryWriter(0),
		registry: prometheus.NewRegistry(),
	}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestPipeline_InvalidCapacity(t *testing.T) {
	cfg := testConfig("")
	cfg.CacheCapacity = 0

	_, err := newPipeline(pipelineOptions{cfg: cfg, registry: prometheus.NewRegistry()}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestReplayCmd_RequiresFileEvents(t *testing.T) {
	t.Setenv("FILE_TRACER_ENABLE_FILE_EVENTS", "false")

	root := newRootCmd()
	root.SetArgs([]string{"replay", "testdata/session.jsonl"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrFileEventsDisabled)
}

func TestReplayCmd_WritesRows(t *testing.T) {
	t.Setenv("FILE_TRACER_ENABLE_FILE_EVENTS", "true")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{
		"replay",
		"--volume", `\Device\HarddiskVolume3=D:`,
		"--volume", `\Device\HarddiskVolume1=C:`,
		"--row-filter", `kind == "RenamePath"`,
		"testdata/session.jsonl",
	})
	root.SetOut(&out)

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var row filetable.Row
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, `D:\docs\a.txt`, row.Path)
	assert.Equal(t, `D:\docs\b.txt`, row.NewPath)
}

func TestReplayCmd_InvalidAttribute(t *testing.T) {
	t.Setenv("FILE_TRACER_ENABLE_FILE_EVENTS", "true")

	root := newRootCmd()
	root.SetArgs([]string{"replay", "-a", "broken", "testdata/session.jsonl"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAME=EXPR")
}

func TestVolumesCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"volumes", "--volume", `\Device\HarddiskVolume3=C:`})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Equal(t, "C:\t\\Device\\HarddiskVolume3\n", out.String())
}
