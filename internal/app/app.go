package app

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/config"
	"github.com/JakeFAU/careers-crawler/internal/crawler"
	"github.com/JakeFAU/careers-crawler/internal/extract"
	collyfetcher "github.com/JakeFAU/careers-crawler/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/careers-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/careers-crawler/internal/hash/sha256"
	"github.com/JakeFAU/careers-crawler/internal/headless/detector"
	"github.com/JakeFAU/careers-crawler/internal/id/uuid"
	"github.com/JakeFAU/careers-crawler/internal/listing"
	"github.com/JakeFAU/careers-crawler/internal/policy/ratelimit"
	gcppublisher "github.com/JakeFAU/careers-crawler/internal/publisher/pubsub"
	"github.com/JakeFAU/careers-crawler/internal/sites"
	gcsstorage "github.com/JakeFAU/careers-crawler/internal/storage/gcs"
	localstorage "github.com/JakeFAU/careers-crawler/internal/storage/local"
	pgstore "github.com/JakeFAU/careers-crawler/internal/storage/postgres"
)

// App holds the long-lived services shared by the CLI and the HTTP API.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	runner   *Runner
	registry *sites.Registry

	headless     *headlessfetcher.Fetcher
	postingStore *pgstore.PostingStore
	gcsClient    *storage.Client
	pubsubClient *pubsub.Client
	publisher    *gcppublisher.Publisher
}

// Runner returns the pipeline runner.
func (a *App) Runner() *Runner {
	return a.runner
}

// Registry returns the site registry.
func (a *App) Registry() *sites.Registry {
	return a.registry
}

// Build creates every dependency named by cfg. Sinks whose settings are empty
// are left out of the fan-out.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{cfg: cfg, logger: logger}

	registry, err := sites.LoadRegistry(cfg.Sites.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("site registry init failed: %w", err)
	}
	app.registry = registry

	blobStore, err := setupStorage(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	postingStore, err := setupDatabase(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	publisher, err := setupPublisher(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	controller := crawler.NewController(
		setupFetcher(app),
		listing.NewParser(logger.Named("listing")),
		extract.New(extract.WithLogger(logger.Named("extract"))),
		crawler.TimerPauser{},
		nil,
		crawler.ControllerConfig{PageDelay: cfg.Crawler.PageDelay},
		logger.Named("controller"),
	)

	app.runner = NewRunner(
		controller,
		uuid.New(),
		Sinks{
			Postings:  postingStore,
			Blobs:     blobStore,
			Publisher: publisher,
			Hasher:    sha256.New(),
		},
		RunnerConfig{BlobPrefix: cfg.Storage.Prefix, Topic: cfg.PubSub.TopicID},
		logger.Named("runner"),
	)
	return app, nil
}

// Close releases every client Build opened.
func (a *App) Close() {
	if a.headless != nil {
		a.headless.Close()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.postingStore != nil {
		a.postingStore.Close()
	}
}

func setupFetcher(app *App) crawler.Fetcher {
	cfg := app.cfg
	var limiter crawler.RequestLimiter
	if cfg.Crawler.RequestsPerSecond > 0 {
		limiter = ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
			Burst:             cfg.Crawler.Burst,
		})
	}
	headers := http.Header{}
	headers.Set("User-Agent", cfg.Crawler.UserAgent)

	primary := crawler.NewRetryingFetcher(
		collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.Crawler.UserAgent,
			RespectRobots: cfg.HTTP.RespectRobots,
			Timeout:       cfg.HTTP.Timeout,
		}),
		crawler.NewLinearRetryPolicy(cfg.HTTP.MaxRetries, cfg.HTTP.BackoffStep),
		crawler.TimerPauser{},
		limiter,
		headers,
		app.logger.Named("fetch"),
	)
	app.logger.Info("using colly fetcher", zap.String("user_agent", cfg.Crawler.UserAgent))

	if !cfg.Headless.Enabled {
		return primary
	}
	headless, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
		MaxParallel:       cfg.Headless.MaxParallel,
		UserAgent:         cfg.Crawler.UserAgent,
		NavigationTimeout: cfg.Headless.NavTimeout,
		ReadySelector:     cfg.Headless.ReadySelector,
		SettleDelay:       cfg.Headless.SettleDelay,
	})
	if err != nil {
		app.logger.Warn("headless fetcher init failed; SPA pages will not be rendered", zap.Error(err))
		return primary
	}
	app.headless = headless
	app.logger.Info("headless promotion enabled",
		zap.Int("max_parallel", cfg.Headless.MaxParallel),
		zap.Int("promotion_threshold", cfg.Headless.PromotionThreshold),
	)
	// A failed render falls back to the static page, so it is tried once.
	rendering := crawler.NewRetryingFetcher(
		headless,
		crawler.NewLinearRetryPolicy(0, 0),
		crawler.TimerPauser{},
		limiter,
		headers,
		app.logger.Named("headless"),
	)
	return crawler.NewPromotingFetcher(
		primary,
		rendering,
		detector.NewHeuristic(cfg.Headless.PromotionThreshold),
		app.logger.Named("promote"),
	)
}

func setupStorage(ctx context.Context, app *App) (crawler.BlobStore, error) {
	cfg := app.cfg.Storage
	switch {
	case cfg.LocalDir != "":
		store, err := localstorage.New(localstorage.Config{BaseDir: cfg.LocalDir})
		if err != nil {
			return nil, fmt.Errorf("local blob store init failed: %w", err)
		}
		app.logger.Info("using local archive storage", zap.String("path", cfg.LocalDir))
		return store, nil
	case cfg.GCSBucket != "":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		app.gcsClient = client
		store, err := gcsstorage.New(client, gcsstorage.Config{Bucket: cfg.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("gcs blob store init failed: %w", err)
		}
		app.logger.Info("using GCS archive storage", zap.String("bucket", cfg.GCSBucket))
		return store, nil
	default:
		app.logger.Debug("no archive storage configured")
		return nil, nil
	}
}

func setupDatabase(ctx context.Context, app *App) (crawler.PostingStore, error) {
	cfg := app.cfg.DB
	if cfg.DSN == "" {
		app.logger.Debug("no DSN configured, postings will not be persisted")
		return nil, nil
	}
	store, err := pgstore.New(ctx, pgstore.Config{
		DSN:      cfg.DSN,
		Table:    cfg.Table,
		MaxConns: cfg.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("posting store init failed: %w", err)
	}
	app.postingStore = store
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("posting store schema: %w", err)
	}
	app.logger.Info("posting store initialized", zap.String("table", cfg.Table))
	return store, nil
}

func setupPublisher(ctx context.Context, app *App) (crawler.Publisher, error) {
	cfg := app.cfg.PubSub
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		app.logger.Debug("no Pub/Sub topic configured, crawl events will not be published")
		return nil, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client init failed: %w", err)
	}
	app.pubsubClient = client
	publisher, err := gcppublisher.New(client, cfg.TopicID)
	if err != nil {
		return nil, fmt.Errorf("pubsub publisher init failed: %w", err)
	}
	app.publisher = publisher
	app.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", cfg.ProjectID),
		zap.String("topic", cfg.TopicID),
	)
	return publisher, nil
}
