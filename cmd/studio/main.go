package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studiosix/photostudio/modules/web"
	"github.com/studiosix/photostudio/pkg/account"
	"github.com/studiosix/photostudio/pkg/billing"
	"github.com/studiosix/photostudio/pkg/config"
	"github.com/studiosix/photostudio/pkg/credits"
	"github.com/studiosix/photostudio/pkg/file"
	"github.com/studiosix/photostudio/pkg/handoff"
	"github.com/studiosix/photostudio/pkg/httpserver"
	"github.com/studiosix/photostudio/pkg/logger"
	"github.com/studiosix/photostudio/pkg/pg"
	"github.com/studiosix/photostudio/pkg/redis"
	"github.com/studiosix/photostudio/pkg/studio"
)

// appConfig holds the wiring choices that do not belong to any single
// package: storage backend selection, tier catalog location and the price
// table sold at checkout.
type appConfig struct {
	TierCatalogPath string `env:"TIER_CATALOG_PATH"`

	ArtifactsBackend string `env:"ARTIFACTS_BACKEND" envDefault:"local"`
	ArtifactsDir     string `env:"ARTIFACTS_DIR" envDefault:"./artifacts"`
	ArtifactsBaseURL string `env:"ARTIFACTS_BASE_URL" envDefault:"http://localhost:8080/artifacts"`

	HandoffTokenTTL time.Duration `env:"HANDOFF_TOKEN_TTL" envDefault:"15m"`

	PriceStarterMonthly    string `env:"PADDLE_PRICE_STARTER_MONTHLY,required"`
	PriceStarterAnnual     string `env:"PADDLE_PRICE_STARTER_ANNUAL"`
	PriceCreatorMonthly    string `env:"PADDLE_PRICE_CREATOR_MONTHLY,required"`
	PriceCreatorAnnual     string `env:"PADDLE_PRICE_CREATOR_ANNUAL"`
	PriceEnterpriseMonthly string `env:"PADDLE_PRICE_ENTERPRISE_MONTHLY"`

	FirstMonthDiscount string `env:"PADDLE_FIRST_MONTH_DISCOUNT"`
}

func (c appConfig) priceTable() billing.PriceTable {
	add := func(t billing.PriceTable, ref string, tier credits.Tier, interval billing.BillingInterval) billing.PriceTable {
		if ref == "" {
			return t
		}
		return append(t, billing.Price{Ref: ref, Tier: tier, Interval: interval})
	}

	var table billing.PriceTable
	table = add(table, c.PriceStarterMonthly, credits.TierStarter, billing.IntervalMonthly)
	table = add(table, c.PriceStarterAnnual, credits.TierStarter, billing.IntervalAnnual)
	table = add(table, c.PriceCreatorMonthly, credits.TierCreator, billing.IntervalMonthly)
	table = add(table, c.PriceCreatorAnnual, credits.TierCreator, billing.IntervalAnnual)
	table = add(table, c.PriceEnterpriseMonthly, credits.TierEnterprise, billing.IntervalMonthly)
	return table
}

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithAttr(slog.String("service", "photostudio")))
	slog.SetDefault(log)

	var (
		app       appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		webCfg    web.Config
		httpCfg   httpserver.Config
		paddleCfg billing.PaddleConfig
		modelCfg  studio.RemoteConfig
	)
	config.MustLoad(&app)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&webCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&paddleCfg)
	config.MustLoad(&modelCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	store := credits.NewPostgresStore(pool)

	catalogSource := credits.CatalogSource(credits.NewStaticCatalogSource(credits.DefaultCatalog()))
	if app.TierCatalogPath != "" {
		catalogSource = credits.NewYAMLCatalogSource(app.TierCatalogPath)
	}
	ledger, err := credits.NewLedger(ctx, catalogSource, store, credits.WithLedgerLogger(log))
	if err != nil {
		return fmt.Errorf("credit ledger: %w", err)
	}

	accounts := account.NewService(store, ledger, account.WithLogger(log))

	provider, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return fmt.Errorf("paddle provider: %w", err)
	}
	reconciler, err := billing.NewReconciler(store, ledger, provider, app.priceTable(),
		billing.WithReconcilerLogger(log),
		billing.WithFirstMonthDiscount(app.FirstMonthDiscount),
	)
	if err != nil {
		return fmt.Errorf("billing reconciler: %w", err)
	}

	artifacts, err := newArtifactStorage(ctx, app)
	if err != nil {
		return fmt.Errorf("artifact storage: %w", err)
	}

	tokens, err := handoff.NewRedisTokenStore(redisClient, app.HandoffTokenTTL)
	if err != nil {
		return fmt.Errorf("handoff token store: %w", err)
	}
	broker := handoff.NewBroker(tokens, webCfg.BaseURL, handoff.WithBrokerLogger(log))

	generator, err := studio.NewRemoteGenerator(modelCfg)
	if err != nil {
		return fmt.Errorf("model client: %w", err)
	}
	orch := studio.NewOrchestrator(ledger, generator, artifacts,
		studio.NewPostgresGenerationStore(pool),
		studio.WithOrchestratorLogger(log),
	)

	module, err := web.NewModule(webCfg, accounts, ledger, reconciler, broker, orch, artifacts,
		web.WithLogger(log))
	if err != nil {
		return fmt.Errorf("web module: %w", err)
	}

	router := module.Router()
	router.Get("/healthz", httpserver.Healthcheck(
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	log.InfoContext(ctx, "starting server", slog.String("addr", httpCfg.Addr))
	return server.Run(ctx, router)
}

func newArtifactStorage(ctx context.Context, app appConfig) (file.Storage, error) {
	switch app.ArtifactsBackend {
	case "s3":
		var s3Cfg file.S3Config
		config.MustLoad(&s3Cfg)
		return file.NewS3Storage(ctx, s3Cfg)
	case "local", "":
		return file.NewLocalStorage(app.ArtifactsDir, app.ArtifactsBaseURL)
	default:
		return nil, fmt.Errorf("%w: unknown artifacts backend %q", file.ErrInvalidConfig, app.ArtifactsBackend)
	}
}
