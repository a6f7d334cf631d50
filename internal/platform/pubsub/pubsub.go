package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/pkg/apperr"
	"github.com/fatflowers/subscription/pkg/events"
)

// Bus abstracts the message transport. The kafka driver is used in
// production; the memory driver backs tests and local development.
type Bus interface {
	// Publisher returns the shared raw publisher.
	Publisher() message.Publisher
	// Subscriber returns a subscriber scoped to the given consumer group.
	// Each group tracks its own offsets and receives every message.
	Subscriber(group string) (message.Subscriber, error)
	Close() error
}

// NewMessage marshals payload to JSON and stamps the partition key metadata
// so the kafka marshaler routes all messages of one subscription to the same
// partition.
func NewMessage(partitionKey string, payload interface{}) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(events.PartitionKeyMetadata, partitionKey)
	return msg, nil
}

// Producer is the typed publishing facade used by the lifecycle engines.
type Producer struct {
	bus Bus
	log *zap.SugaredLogger
}

func NewProducer(bus Bus, log *zap.SugaredLogger) *Producer {
	return &Producer{bus: bus, log: log}
}

// Publish sends payload to topic keyed by partitionKey. A failure surfaces
// as apperr.ErrMessaging: the calling operation must fail loudly rather than
// silently succeed.
func (p *Producer) Publish(ctx context.Context, topic, partitionKey string, payload interface{}) error {
	msg, err := NewMessage(partitionKey, payload)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if err := p.bus.Publisher().Publish(topic, msg); err != nil {
		p.log.Errorw("publish failed", "topic", topic, "key", partitionKey, "err", err)
		return fmt.Errorf("publish to %s: %w", topic, apperr.ErrMessaging)
	}
	p.log.Infow("message published", "topic", topic, "key", partitionKey, "message_uuid", msg.UUID)
	return nil
}
