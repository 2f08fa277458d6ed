package pubsub

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
)

// NATSPubSub implements pub/sub using an external NATS JetStream server
type NATSPubSub struct {
	*jetStream
}

// NewNATSPubSub connects to natsURL and binds the DRAFT_EVENTS stream to
// subject. Events are kept indefinitely for replay.
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("fantasy-draft-engine"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b, err := newJetStream(nc, streamOptions{
		subject: subject,
		stream:  "DRAFT_EVENTS",
		storage: nats.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	logger.Info("Connected to NATS", "url", natsURL, "subject", subject)
	return &NATSPubSub{jetStream: b}, nil
}

// Close closes the NATS connection
func (p *NATSPubSub) Close() {
	p.close()
}
