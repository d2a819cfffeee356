package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/yata/app/yata/api"
	"github.com/jrazmi/yata/app/yata/config"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/infrastructure/workers"
	"github.com/jrazmi/yata/sdk/environment"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/telemetry"
	"golang.org/x/sync/errgroup"
)

var build = "develop"
var appName = "YATA"

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
	}

	log, err := logger.NewFromEnv(appName,
		logger.WithService("yata"),
		logger.WithTraceID(telemetry.TraceID),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	// :*: START DATABASES :*:
	opts, err := config.OptionsFromEnv(appName)
	if err != nil {
		return err
	}
	ds, err := config.OpenDatastore(ctx, appName, log, opts)
	if err != nil {
		return err
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection", "driver", ds.Driver)
		ds.Close()
	}()
	log.InfoContext(ctx, "startup", "status", "datastore ready", "driver", ds.Driver)

	// :*: SYNC ENGINE :*:
	engine, err := syncengine.NewFromEnv(appName, log, ds.Tx, ds.Repositories.SyncStores())
	if err != nil {
		return fmt.Errorf("sync engine: %w", err)
	}

	reaper, err := workers.NewFromEnv(appName+"_REAPER", syncengine.NewReaper(engine, opts.ReaperInterval),
		workers.WithLogger(log.Logger),
		workers.WithMetrics(workers.NewCounters()),
	)
	if err != nil {
		return fmt.Errorf("reaper: %w", err)
	}

	// :*: WEB :*:
	var handlerOpts web.HandlerOptions
	if err := environment.ParseEnvTags(appName, &handlerOpts); err != nil {
		return fmt.Errorf("webhandler: %w", err)
	}

	handler := api.New(config.Yata{
		Build:     build,
		Logger:    log,
		Telemetry: telemetry.NewTelemetry(),
		Datastore: ds,
		Engine:    engine,
	}, handlerOpts)

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.InfoContext(gctx, "startup", "status", "api router started", "host", server.Addr)
		defer log.InfoContext(ctx, "shutdown", "status", "api router stopped")
		return server.Run(gctx, nil)
	})

	g.Go(func() error {
		defer log.InfoContext(ctx, "shutdown", "status", "reaper stopped")
		return reaper.Start(gctx)
	})

	return g.Wait()
}
