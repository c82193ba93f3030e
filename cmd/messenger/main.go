package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aDramaQueen/messenger/pkg/config"
	"github.com/aDramaQueen/messenger/pkg/directory"
	"github.com/aDramaQueen/messenger/pkg/event"
	"github.com/aDramaQueen/messenger/pkg/fanout"
	"github.com/aDramaQueen/messenger/pkg/httpserver"
	"github.com/aDramaQueen/messenger/pkg/ledger"
	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/pg"
	"github.com/aDramaQueen/messenger/pkg/redis"
	"github.com/aDramaQueen/messenger/pkg/store"
	"github.com/aDramaQueen/messenger/pkg/ws"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	// memory for single-instance development, redis for shared deployments.
	DirectoryDriver string `env:"DIRECTORY_DRIVER" envDefault:"memory"`

	// memory for development, postgres for durable counters and messages.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Service terminated", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(cfg.Environment, "messenger"))
	logger.SetAsDefault(log)

	var probes []func(context.Context) error

	var dir directory.Directory
	switch cfg.DirectoryDriver {
	case "memory":
		dir = directory.NewMemory()
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		dir = directory.NewRedis(client)
		probes = append(probes, redis.Healthcheck(client))
	default:
		return fmt.Errorf("unknown directory driver %q", cfg.DirectoryDriver)
	}

	var (
		ledgerStorage ledger.Storage
		storeStorage  store.Storage
	)
	switch cfg.StorageDriver {
	case "memory":
		ledgerStorage = ledger.NewMemoryStorage()
		storeStorage = store.NewMemoryStorage()
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}
		ledgerStorage = ledger.NewPostgresStorage(pool)
		storeStorage = store.NewPostgresStorage(pool)
		probes = append(probes, pg.Healthcheck(pool))
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	bus := event.NewBus()
	messages := store.New(storeStorage, bus)
	dispatcher := fanout.New(dir, fanout.WithLogger(log))
	counters := ledger.New(ledgerStorage,
		ledger.WithPusher(dispatcher),
		ledger.WithUnreadSource(messages),
		ledger.WithLogger(log),
	)
	event.RegisterReactors(bus, counters)

	wsHandler := ws.NewHandler(headerIdentity, dir, dispatcher, counters, ws.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(log, probes...))
	r.Method(http.MethodGet, "/ws/notify", wsHandler)
	r.Route("/api", newAPI(messages, counters, log).routes)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "Starting messenger service",
		slog.String("environment", cfg.Environment),
		slog.String("directory_driver", cfg.DirectoryDriver),
		slog.String("storage_driver", cfg.StorageDriver),
	)
	return srv.Run(ctx, r)
}

// headerIdentity trusts the X-User-Id header set by the fronting
// authentication proxy. Requests without it are anonymous and rejected.
func headerIdentity(r *http.Request) (string, error) {
	return r.Header.Get("X-User-Id"), nil
}
