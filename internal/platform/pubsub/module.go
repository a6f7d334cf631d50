package pubsub

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/subscription/pkg/config"
)

// BusFactory builds the configured transport. Kept as a function type so the
// kafka and memory drivers can register without an import cycle.
type BusFactory func(cfg *cfgpkg.Config) (Bus, error)

func NewBusFromConfig(cfg *cfgpkg.Config, log *zap.SugaredLogger, factory BusFactory) (Bus, error) {
	bus, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	log.Infow("message bus ready", "driver", cfg.Kafka.Driver)
	return bus, nil
}

func registerBusClose(lc fx.Lifecycle, log *zap.SugaredLogger, bus Bus) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing message bus")
			return bus.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewBusFromConfig),
	fx.Provide(NewProducer),
	fx.Invoke(registerBusClose),
)
