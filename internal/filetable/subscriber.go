package filetable

import (
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/attributes"
	"github.com/mrzor/file-tracer/internal/etw"
)

// Subscriber turns dispatched events into rows.
type Subscriber struct {
	filter *attributes.Filter
	writer RowWriter
	logger *zap.Logger
}

// NewSubscriber creates a subscriber writing rows accepted by filter to w.
// A nil filter accepts every event.
func NewSubscriber(filter *attributes.Filter, w RowWriter, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		filter: filter,
		writer: w,
		logger: logger.Named("filetable"),
	}
}

// Handle is a publisher.Subscriber. Events rejected by the filter are not
// an error.
func (s *Subscriber) Handle(ev *etw.Event) error {
	row, ok, err := FromEvent(ev)
	if err != nil || !ok {
		return err
	}

	ok, err = s.filter.Match(ev)
	if err != nil || !ok {
		return err
	}

	s.logger.Debug("Adding row",
		zap.String("type", row.Type),
		zap.String("path", row.Path),
		zap.String("new_path", row.NewPath))
	return s.writer.WriteRows([]Row{row})
}
