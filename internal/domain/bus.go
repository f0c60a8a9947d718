package domain

import "context"

// Topics of the experiment pipeline. Requests carry an ExperimentRequest
// payload, completions an Experiment.
const (
	TopicExperimentRequested = "validator.experiment.requested"
	TopicExperimentCompleted = "validator.experiment.completed"
)

// EventBus moves experiment requests from the API to a worker and
// completions back out. The community tier runs it on Go channels, the pro
// tier on NATS.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe calls handler for every message on topic until the returned
	// Subscription is cancelled or ctx ends.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// MessageHandler processes one delivered message. A returned error is
// logged by the bus; there is no redelivery.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message is the envelope every payload travels in. Metadata carries the
// publisher's trace_id when one was active.
type Message struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"` // unix nanoseconds
}

// Subscription is a live registration on a topic.
type Subscription interface {
	Unsubscribe() error
	Topic() string
}

// EventBusConfig selects and tunes the bus.
type EventBusConfig struct {
	Type string // "channel" or "nats"

	// ChannelBufferSize is the per-subscriber queue length; a full queue
	// drops messages.
	ChannelBufferSize int

	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds

	// NATSQueueGroup, when set, load-balances each topic across replicas.
	NATSQueueGroup string
}
