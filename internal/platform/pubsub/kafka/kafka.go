package kafka

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
)

// Bus is the kafka-backed transport. The publisher runs with an idempotent
// producer config (acks=all, bounded retries, one in-flight request) so its
// own retries cannot duplicate a publication. Consumers still see
// at-least-once delivery and must dedup on their side.
type Bus struct {
	cfg       *cfgpkg.Config
	marshaler wkafka.MarshalerUnmarshaler
	publisher message.Publisher
	subs      []message.Subscriber
}

func NewBus(cfg *cfgpkg.Config) (*Bus, error) {
	marshaler := wkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		key := msg.Metadata.Get(events.PartitionKeyMetadata)
		if key == "" {
			return "", fmt.Errorf("message %s has no partition key", msg.UUID)
		}
		return key, nil
	})

	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Net.MaxOpenRequests = 1

	publisher, err := wkafka.NewPublisher(
		wkafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             marshaler,
			OverwriteSaramaConfig: saramaCfg,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build kafka publisher: %w", err)
	}

	return &Bus{cfg: cfg, marshaler: marshaler, publisher: publisher}, nil
}

func (b *Bus) Publisher() message.Publisher {
	return b.publisher
}

func (b *Bus) Subscriber(group string) (message.Subscriber, error) {
	sub, err := wkafka.NewSubscriber(
		wkafka.SubscriberConfig{
			Brokers:       b.cfg.Kafka.Brokers,
			ConsumerGroup: group,
			Unmarshaler:   b.marshaler,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build kafka subscriber for group %s: %w", group, err)
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

func (b *Bus) Close() error {
	for _, s := range b.subs {
		_ = s.Close()
	}
	return b.publisher.Close()
}

var _ pubsub.Bus = (*Bus)(nil)
