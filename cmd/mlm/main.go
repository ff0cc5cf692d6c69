package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"mlm/config"
	"mlm/internal/delivery"
	deliveryhttp "mlm/internal/delivery/http"
	"mlm/internal/delivery/http/middleware"
	"mlm/internal/delivery/http/router/handler"
	deliverymiddleware "mlm/internal/delivery/middleware"
	"mlm/internal/infra/auth"
	"mlm/internal/infra/cache"
	"mlm/internal/infra/genealogy"
	logs "mlm/internal/infra/log"
	"mlm/internal/infra/metrics"
	"mlm/internal/infra/persistence/memory"
	"mlm/internal/infra/persistence/postgres"
	"mlm/internal/infra/pubsub"
	"mlm/internal/infra/qrcode"
	"mlm/internal/infra/storage"
	"mlm/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(),
		injectRepo(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			logs.New,
			context.Background,
			cache.NewClient,
		),
		metrics.Module,
		fx.Provide(
			fx.Annotate(
				func(m *metrics.Metrics) http.Handler { return m.Handler() },
				fx.ResultTags(`name:"metricsHandler"`),
			),
			func(m *metrics.Metrics) deliverymiddleware.HTTPObserver { return m },
		),
	)
}

// injectRepo picks the repositories of the configured persistence driver.
func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Persistence.Driver == config.PersistenceDriverMemory {
		return memory.Module
	}

	return postgres.Module
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			qrcode.New,
			storage.New,
			cache.NewIdempotencyStore,
			cache.NewOrderStatusCache,
			impl.NewCommissionEngine,
		),
		pubsub.Module,
		genealogy.Module,
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewOrderService,
			impl.NewInventoryService,
			impl.NewCatalogService,
			impl.NewSponsorService,
			impl.NewRankService,
			impl.NewWalletService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewOrderHandler,
			handler.NewPaymentProofHandler,
			handler.NewAffiliateHandler,
			handler.NewWalletHandler,
			handler.NewCatalogHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				deliveryhttp.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
