package relay

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
)

// NATSPublisher is the publishing side of a NATS connection.
type NATSPublisher interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS dials url with automatic reconnects.
func ConnectNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("nats")

	nc, err := nats.Connect(url,
		nats.Name("file-tracer"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.Timeout(10*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSSubscriber publishes every event on one subject.
type NATSSubscriber struct {
	conn    NATSPublisher
	subject string
}

// NewNATSSubscriber creates a subscriber publishing on subject.
func NewNATSSubscriber(conn NATSPublisher, subject string) *NATSSubscriber {
	return &NATSSubscriber{conn: conn, subject: subject}
}

// Handle is a publisher.Subscriber.
func (s *NATSSubscriber) Handle(ev *etw.Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	return nil
}
