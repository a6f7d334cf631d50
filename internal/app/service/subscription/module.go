package subscription

import "go.uber.org/fx"

// Module exposes the subscription lifecycle engine and wires its
// payment-event consumer group.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(NewPaymentEventConsumer),
	fx.Invoke(registerConsumer),
)
