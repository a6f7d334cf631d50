package payment

import "go.uber.org/fx"

// Module exposes the payment lifecycle engine and wires its
// payment-request consumer group.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(NewPaymentRequestConsumer),
	fx.Invoke(registerConsumer),
)
