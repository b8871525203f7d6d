package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/metrics"
)

// NATS publishes events as JSON on subject {prefix}.requests.{kind}.
type NATS struct {
	nc     *nats.Conn
	prefix string
	logger *zap.SugaredLogger
}

// Connect dials the NATS server described by cfg.
func Connect(cfg config.NATSConfig, logger *zap.SugaredLogger) (*NATS, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("teammatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnw("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infow("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATS(nc, cfg.SubjectPrefix, logger), nil
}

// NewNATS wraps an existing connection.
func NewNATS(nc *nats.Conn, prefix string, logger *zap.SugaredLogger) *NATS {
	return &NATS{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject an event of kind is published on.
func (n *NATS) Subject(kind Kind) string {
	return fmt.Sprintf("%s.requests.%s", n.prefix, kind)
}

// Publish implements Publisher.
func (n *NATS) Publish(_ context.Context, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		metrics.NotificationFailures.Inc()
		n.logger.Errorw("Failed to marshal notification", "request_id", evt.RequestID, "error", err)
		return
	}
	if err := n.nc.Publish(n.Subject(evt.Kind), data); err != nil {
		metrics.NotificationFailures.Inc()
		n.logger.Warnw("Failed to publish notification",
			"kind", evt.Kind,
			"request_id", evt.RequestID,
			"error", err,
		)
	}
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	return n.nc.Drain()
}
