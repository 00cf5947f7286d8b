package eventprocessor

import (
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/metrics"
)

// Sink receives every dispatched event exactly once.
type Sink interface {
	Fire(ev *etw.Event)
}

// HandleCache stores the last known path of each file-object handle.
type HandleCache interface {
	Put(handle uint64, path string)
	Get(handle uint64) (string, bool)
}

// PathNormalizer rewrites device-form paths to drive-letter form.
type PathNormalizer interface {
	Normalize(path string) string
}

// Outcome is the result of processing one event.
type Outcome uint8

const (
	Dropped Outcome = iota
	CachedOnly
	Dispatched
)

// String returns the metric label for o.
func (o Outcome) String() string {
	switch o {
	case CachedOnly:
		return "cached"
	case Dispatched:
		return "dispatched"
	default:
		return "dropped"
	}
}

// Processor runs the per-kind correlation state machine.
type Processor struct {
	cache      HandleCache
	normalizer PathNormalizer
	sink       Sink
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewProcessor creates a new event processor. logger and m may be nil.
func NewProcessor(cache HandleCache, normalizer PathNormalizer, sink Sink, logger *zap.Logger, m *metrics.Metrics) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cache:      cache,
		normalizer: normalizer,
		sink:       sink,
		logger:     logger.Named("processor"),
		metrics:    m,
	}
}

// Process normalizes, correlates and dispatches ev according to its kind.
// The event is modified in place before dispatch.
func (p *Processor) Process(ev *etw.Event) Outcome {
	outcome := p.process(ev)
	if ev != nil {
		p.metrics.IncEvent(ev.Header.Kind.String(), outcome.String())
	}
	return outcome
}

func (p *Processor) process(ev *etw.Event) Outcome {
	if !ev.Consistent() {
		if ev != nil {
			p.logger.Debug("Dropping inconsistent event", zap.Stringer("kind", ev.Header.Kind))
		}
		return Dropped
	}

	switch data := ev.Payload.(type) {
	case *etw.CreateNewFileData:
		data.FileName = p.normalize(data.FileName)
		return p.dispatch(ev)

	case *etw.NameDeleteData:
		data.FileName = p.normalize(data.FileName)
		return p.dispatch(ev)

	case *etw.CreateData:
		data.FileName = p.normalize(data.FileName)
		if p.cache != nil {
			p.cache.Put(data.FileObject, data.FileName)
		}
		return CachedOnly

	case *etw.RenamePathData:
		data.RenamedFilePath = p.normalize(data.RenamedFilePath)
		data.OldFilePath = ""
		if p.cache != nil {
			if old, ok := p.cache.Get(data.FileObject); ok {
				data.OldFilePath = old
			}
		}
		if data.OldFilePath == "" {
			p.metrics.IncRenameUncorrelated()
			p.logger.Debug("Rename without cached handle",
				zap.Uint64("file_object", data.FileObject),
				zap.String("new_path", data.RenamedFilePath))
		}
		return p.dispatch(ev)

	case *etw.DeletePathData:
		data.FilePath = p.normalize(data.FilePath)
		return p.dispatch(ev)

	default:
		// Process events belong to another pipeline.
		return Dropped
	}
}

func (p *Processor) normalize(path string) string {
	if p.normalizer == nil {
		return path
	}
	return p.normalizer.Normalize(path)
}

func (p *Processor) dispatch(ev *etw.Event) Outcome {
	if p.sink == nil {
		return Dropped
	}
	p.sink.Fire(ev)
	return Dispatched
}
