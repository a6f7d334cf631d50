package offer

import "go.uber.org/fx"

// Module exposes the offer service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
