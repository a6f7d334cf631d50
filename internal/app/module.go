package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/subscription/internal/app/api/server"
	"github.com/fatflowers/subscription/internal/app/service/notification"
	"github.com/fatflowers/subscription/internal/app/service/offer"
	"github.com/fatflowers/subscription/internal/app/service/payment"
	"github.com/fatflowers/subscription/internal/app/service/scheduler"
	"github.com/fatflowers/subscription/internal/app/service/subscription"
	"github.com/fatflowers/subscription/internal/platform/db"
	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/internal/platform/pubsub/driver"
	"github.com/fatflowers/subscription/internal/platform/pubsub/router"
	"github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	driver.Module,
	pubsub.Module,
	router.Module,
	offer.Module,
	subscription.Module,
	payment.Module,
	notification.Module,
	scheduler.Module,
	// The router must start after every consumer module has registered its
	// handler, so RunModule comes last among messaging modules.
	router.RunModule,
	server.Module,
)
