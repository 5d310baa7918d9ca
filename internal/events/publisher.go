package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Lifecycle event names.
const (
	Connected    = "connected"
	Joined       = "joined"
	Left         = "left"
	Disconnected = "disconnected"
)

// Event is one connection-lifecycle record published to Kafka.
type Event struct {
	Event  string    `json:"event"`
	ConnID string    `json:"conn_id"`
	Room   string    `json:"room,omitempty"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher writes lifecycle events to a Kafka topic. Publishing is
// fire-and-forget: a broker hiccup never affects relaying.
type Publisher struct {
	writer *kafkago.Writer
	log    *zap.SugaredLogger
}

func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return &Publisher{writer: w, log: log}
}

// Publish emits one event. Safe to call on a nil Publisher (events disabled).
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil {
		return
	}
	ev.At = time.Now().UTC()
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	msg := kafkago.Message{
		Key:   []byte(ev.ConnID),
		Value: b,
		Time:  ev.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnw("lifecycle event publish failed", "event", ev.Event, "error", err)
	}
}

// Close flushes and closes the underlying writer. Safe on a nil Publisher.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
