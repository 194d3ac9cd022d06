package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// NATSBus publishes each notification on a subject of the form
// WORKFLOW.Events.<Type>, grounded on ngnhng-diy-temporal/nats's
// connection-management idiom (reconnect wait, ping interval, disconnect/
// reconnect handlers) and the teacher's engine.go's general
// "run a string subject through a publisher" shape for lifecycle events.
type NATSBus struct {
	conn *nats.Conn
}

// NewNATSBus connects to natsURL. Reconnect handling mirrors
// ngnhng-diy-temporal/nats.NewClient's options so a transient broker
// restart does not require recreating the Bus.
func NewNATSBus(natsURL string) (*NATSBus, error) {
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}
	conn, err := nats.Connect(natsURL,
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(5),
	)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connecting to nats at %s: %w", natsURL, err)
	}
	return &NATSBus{conn: conn}, nil
}

func (b *NATSBus) Publish(ctx context.Context, n workflow.Notification) error {
	payload := toPayload(n)
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	subject := "WORKFLOW.Events." + string(n.Type)
	return b.conn.Publish(subject, raw)
}

// Close drains and closes the underlying connection.
func (b *NATSBus) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}
	return b.conn.Drain()
}
