package driver

import (
	"go.uber.org/fx"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/internal/platform/pubsub/kafka"
	"github.com/fatflowers/subscription/internal/platform/pubsub/memory"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
)

func NewFactory() pubsub.BusFactory {
	return func(cfg *cfgpkg.Config) (pubsub.Bus, error) {
		switch cfg.Kafka.Driver {
		case "memory":
			return memory.NewBus(), nil
		default:
			return kafka.NewBus(cfg)
		}
	}
}

var Module = fx.Options(
	fx.Provide(NewFactory),
)
