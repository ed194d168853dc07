// Command server runs the bus ticket booking API and its page routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/database"
	"github.com/iliyamo/bus-ticket-booking/internal/queue"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/router"
	"github.com/iliyamo/bus-ticket-booking/internal/seed"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
	"github.com/iliyamo/bus-ticket-booking/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.Log.NewLogger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	passwords := passwordHasher(cfg.Auth)
	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	if err := hashSeedUsers(&data, passwords); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, data)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		log.Info("redis connected", "addr", cfg.Redis.Addr)
	} else if cfg.Redis.Enabled {
		log.Warn("redis unavailable, cache and rate limit disabled", "addr", cfg.Redis.Addr)
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Queue.Enabled {
		events = queue.AMQPPublisher{URL: cfg.Queue.URL, Log: log}
		consumer := &queue.Consumer{URL: cfg.Queue.URL, LogDir: cfg.Queue.LogDir, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", "err", err)
			}
		}()
	}

	e := router.New(router.Deps{
		Config:    cfg,
		Store:     store,
		Passwords: passwords,
		Events:    events,
		Redis:     rdb,
		Pages:     web.FS,
		Log:       log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.Store, "auth", cfg.Auth.Mode)
		if cfg.Auth.Mode == config.AuthModeHeader {
			log.Warn("auth gate trusts the x-auth-status header; any client can pass it")
		}
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func passwordHasher(c config.AuthConfig) utils.PasswordHasher {
	if c.PasswordHashing == config.HashingBcrypt {
		return utils.BcryptPasswords{Cost: c.BcryptCost}
	}
	return utils.PlainPasswords{}
}

// hashSeedUsers stores seed passwords the way registration would.
func hashSeedUsers(d *seed.Data, h utils.PasswordHasher) error {
	for i, u := range d.Users {
		hashed, err := h.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash seed user %s: %w", u.Email, err)
		}
		d.Users[i].Password = hashed
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, data seed.Data) (repository.Store, func(), error) {
	if cfg.Store != config.StoreMySQL {
		return repository.NewMemoryStore(data), func() {}, nil
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := database.Seed(ctx, db, data); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
}
