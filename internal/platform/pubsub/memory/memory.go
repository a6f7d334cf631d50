package memory

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
)

// Bus is a gochannel-backed transport for tests and local development.
// Every Subscriber call gets its own delivery of each message, which mirrors
// the one-delivery-per-consumer-group behavior of the kafka driver closely
// enough for the saga flow. Partition ordering holds trivially: there is one
// in-process channel per subscription.
type Bus struct {
	ch *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		ch: gochannel.NewGoChannel(
			gochannel.Config{
				Persistent:          true,
				OutputChannelBuffer: 100,
			},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *Bus) Publisher() message.Publisher {
	return b.ch
}

func (b *Bus) Subscriber(group string) (message.Subscriber, error) {
	return b.ch, nil
}

func (b *Bus) Close() error {
	return b.ch.Close()
}

var _ pubsub.Bus = (*Bus)(nil)
