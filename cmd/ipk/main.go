package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/repository"
	"github.com/noah-isme/ipk-calculator/pkg/cache"
	"github.com/noah-isme/ipk-calculator/pkg/config"
	"github.com/noah-isme/ipk-calculator/pkg/database"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
	"github.com/noah-isme/ipk-calculator/pkg/logger"
	"github.com/noah-isme/ipk-calculator/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, cfg, logr, os.Args[1:])
	stop()
	_ = logr.Sync()
	os.Exit(code)
}

func execute(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string) int {
	store, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeStore()

	a, err := newApp(cfg, store, logr, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	runErr := a.run(ctx, args)
	if err := a.metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logr.Warn("metrics textfile not written", zap.Error(err))
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, errUsage):
		fmt.Fprintln(os.Stderr, runErr)
		fmt.Fprint(os.Stderr, usage)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(runErr))
		return 1
	}
}

// openStore connects the configured key-value backend.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.KeyValueStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		logr.Debug("using redis store", zap.String("addr", cache.Addr(cfg.Redis)))
		return repository.NewRedisStore(client, logr), func() { _ = client.Close() }, nil
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		store := repository.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		logr.Debug("using postgres store", zap.String("db", cfg.Database.Name))
		return store, func() { _ = db.Close() }, nil
	default:
		files, err := storage.NewLocalStorage(cfg.Store.DataDir)
		if err != nil {
			return nil, noop, err
		}
		logr.Debug("using file store", zap.String("dir", cfg.Store.DataDir))
		return repository.NewFileStore(files), noop, nil
	}
}

func describe(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrValidation.Code {
		return appErr.Message
	}
	return err.Error()
}
