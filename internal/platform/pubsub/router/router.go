package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
)

// Router hosts every consumer-group handler. Handler errors leave the
// message unacked; the retry middleware redelivers with backoff and the
// poison queue quarantines messages that exhaust the budget, so no handler
// can loop forever on a poison message.
type Router struct {
	router *message.Router
	log    *zap.SugaredLogger
}

func NewRouter(cfg *cfgpkg.Config, log *zap.SugaredLogger, bus pubsub.Bus) (*Router, error) {
	r, err := message.NewRouter(message.RouterConfig{}, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(bus.Publisher(), cfg.Kafka.Topics.DeadLetter)
	if err != nil {
		return nil, err
	}

	r.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Consumer.MaxRetries,
			InitialInterval:     cfg.Consumer.InitialInterval,
			MaxInterval:         cfg.Consumer.MaxInterval,
			Multiplier:          cfg.Consumer.Multiplier,
			MaxElapsedTime:      cfg.Consumer.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              watermill.NewStdLogger(false, false),
			OnRetryHook: func(retryNum int, delay time.Duration) {
				log.Infow("retrying message", "retry_number", retryNum, "delay", delay)
			},
		}.Middleware,
	)

	return &Router{router: r, log: log}, nil
}

// AddNoPublishHandler registers a consuming handler on its group-scoped
// subscriber. Must be called before the router starts.
func (r *Router) AddNoPublishHandler(name, topic string, sub message.Subscriber, h func(msg *message.Message) error) {
	r.router.AddNoPublisherHandler(name, topic, sub, func(msg *message.Message) error {
		if err := h(msg); err != nil {
			r.log.Errorw("handler failed",
				"handler", name,
				"err", err,
				"correlation_id", middleware.MessageCorrelationID(msg),
				"message_uuid", msg.UUID,
			)
			return err
		}
		return nil
	})
}

func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

func (r *Router) Close() error {
	return r.router.Close()
}

// Start hooks the router into the fx lifecycle. It is invoked after every
// consumer module registered its handlers.
func Start(lc fx.Lifecycle, r *Router, log *zap.SugaredLogger) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := r.Run(runCtx); err != nil {
					log.Errorf("message router stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			log.Infow("stopping message router")
			return r.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewRouter),
)

// RunModule must be listed after all consumer modules so their handlers are
// registered before the router runs.
var RunModule = fx.Options(
	fx.Invoke(Start),
)
