package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"
	"github.com/joho/godotenv"

	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/menu"
	"github.com/appetiteclub/miniapp/internal/metrics"
	"github.com/appetiteclub/miniapp/internal/miniapp"
	"github.com/appetiteclub/miniapp/internal/order"
	"github.com/appetiteclub/miniapp/internal/transport"
	"github.com/appetiteclub/miniapp/pkg"
)

const (
	appNamespace = "MINIAPP"
	appName      = "miniapp"
	appVersion   = "0.1.0"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	backend, driver, err := miniapp.NewBackend(config, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot select storage: %v", appName, appVersion, err)
	}
	if err := backend.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start %s storage: %v", appName, appVersion, driver, err)
	}

	unit, err := menu.ParsePriceUnit(config.GetStringOrDef("menu.price.unit", string(menu.MinorUnits)))
	if err != nil {
		log.Fatalf("%s(%s) invalid menu price unit: %v", appName, appVersion, err)
	}
	// A broken menu is logged by the loader; the service still starts with an empty catalog.
	catalog, _ := menu.NewLoader(config.GetStringOrDef("menu.source", "menu.json"), unit, logger).LoadOrEmpty(ctx)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")
	transportKind := config.GetStringOrDef("transport.kind", transport.HostBridgeName)

	pub, err := pkg.NewNATSPublisher(natsURL, appName)
	if err != nil {
		if transportKind == transport.HostBridgeName {
			log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
		}
		logger.Error("NATS unavailable, notifications disabled", "url", natsURL, "error", err)
		pub = nil
	}

	var publisher events.Publisher
	var notifier order.Notifier
	if pub != nil {
		publisher = pub
		notifier = miniapp.NewEventNotifier(pub)
	}

	var orderTransport order.Transport
	var accounts miniapp.AccountService
	switch transportKind {
	case transport.RemoteName:
		remoteURL, _ := config.GetString("transport.remote.url")
		if remoteURL == "" {
			log.Fatalf("%s(%s) transport.remote.url is required for the remote transport", appName, appVersion)
		}
		orderTransport = transport.NewRemoteOrderAPI(remoteURL, nil, logger)
		accounts = transport.NewAccountClient(remoteURL, nil)

	case transport.HostBridgeName:
		closeDelay, err := time.ParseDuration(config.GetStringOrDef("hostbridge.close.delay", transport.DefaultCloseDelay.String()))
		if err != nil {
			log.Fatalf("%s(%s) invalid hostbridge.close.delay: %v", appName, appVersion, err)
		}
		orderTransport = transport.NewHostBridge(publisher,
			transport.WithTopic(config.GetStringOrDef("hostbridge.topic", "")),
			transport.WithCloseDelay(closeDelay),
			transport.WithHostBridgeLogger(logger),
		)
		if remoteURL, _ := config.GetString("transport.remote.url"); remoteURL != "" {
			accounts = transport.NewAccountClient(remoteURL, nil)
		}

	default:
		log.Fatalf("%s(%s) unknown transport.kind %q", appName, appVersion, transportKind)
	}

	mtr := metrics.New(appName)

	sessions := miniapp.NewSessions(miniapp.SessionDeps{
		Storage:   backend,
		Catalog:   catalog,
		Transport: mtr.InstrumentTransport(orderTransport),
		Notifier:  notifier,
		Phrases:   order.PhrasesFor(config.GetStringOrDef("checkout.locale", order.DefaultLocale)),
		Observers: []cart.Observer{mtr.CartObserver()},
	}, logger)

	hd := miniapp.HandlerDeps{
		Catalog:  catalog,
		Sessions: sessions,
		Accounts: accounts,
		Metrics:  mtr,
	}

	handler := miniapp.NewHandler(hd, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			if pub == nil {
				return nil
			}
			return pub.Close()
		},
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(
			apt.LifecycleHooks{OnStop: backend.Stop},
			publisherLifecycle,
		),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s) with %s storage and %s transport", appName, appVersion, driver, orderTransport.Name())

	err = ms.Run(ctx)
	if err != nil {
		_ = backend.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
