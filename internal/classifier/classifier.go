// Package classifier turns raw trace records into typed file events.
//
// Only five kernel file event ids are recognized. Everything else is
// rejected by a table lookup before any field is touched.
package classifier

import (
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/metrics"
)

var kinds = map[uint16]etw.EventKind{
	etw.EventIDCreateNewFile: etw.KindCreateNewFile,
	etw.EventIDNameDelete:    etw.KindNameDelete,
	etw.EventIDCreate:        etw.KindCreate,
	etw.EventIDRenamePath:    etw.KindRenamePath,
	etw.EventIDDeletePath:    etw.KindDeletePath,
}

// KindOf returns the event kind for a raw event id, or KindInvalid.
func KindOf(eventID uint16) etw.EventKind {
	return kinds[eventID]
}

// Classifier parses raw records into events. It holds no per-record state
// and is safe for concurrent use.
type Classifier struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a classifier. Both arguments may be nil.
func New(logger *zap.Logger, m *metrics.Metrics) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		logger:  logger.Named("classifier"),
		metrics: m,
	}
}

// Classify returns the typed event for rec, or false when the record is not a
// supported file event or a required field could not be read. The record is
// not retained.
func (c *Classifier) Classify(rec etw.RawRecord) (*etw.Event, bool) {
	if rec == nil {
		return nil, false
	}
	hdr := rec.Header()
	kind, ok := kinds[hdr.EventID]
	if !ok {
		c.metrics.IncRecord(metrics.ResultUnsupported)
		return nil, false
	}

	payload, err := parsePayload(kind, hdr, rec.Fields())
	if err != nil {
		c.logger.Debug("Dropping record",
			zap.Stringer("kind", kind),
			zap.Uint16("event_id", hdr.EventID),
			zap.Error(err))
		c.metrics.IncRecord(metrics.ResultParseError)
		return nil, false
	}

	c.metrics.IncRecord(metrics.ResultClassified)
	return &etw.Event{
		Header: etw.Header{
			Kind:     kind,
			TypeInfo: kind.String(),
			Raw:      hdr,
		},
		Payload: payload,
	}, true
}
