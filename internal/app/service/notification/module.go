package notification

import "go.uber.org/fx"

// Module exposes the notification dispatcher and wires its payment-event
// consumer group.
var Module = fx.Options(
	fx.Provide(NewSenderRegistry),
	fx.Provide(NewService),
	fx.Provide(NewPaymentEventConsumer),
	fx.Invoke(registerConsumer),
)
