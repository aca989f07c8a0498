package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wheecious/kener/internal/logging"
	"github.com/wheecious/kener/internal/sim"
)

func main() {
	logger := logging.New(os.Stdout, "kenersim")

	ctx := context.Background()
	var (
		st      sim.Store
		cleanup func()
	)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		pgStore, err := sim.NewPostgresStore(ctx, dbURL)
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		st = pgStore
		cleanup = func() { pgStore.Close() }
		logger.Println("monitor API using PostgreSQL store")
	} else {
		st = sim.NewMemoryStore()
		cleanup = func() {}
		logger.Println("DATABASE_URL not set, using in-memory store")
	}
	defer cleanup()

	var rateLimit float64
	if raw := os.Getenv("KENERSIM_RATE_LIMIT"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Fatalf("invalid KENERSIM_RATE_LIMIT %q: %v", raw, err)
		}
		rateLimit = v
	}

	cfg := sim.Config{
		Addr:         getenvDefault("LISTEN_ADDR", ":3000"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		APIKey:       getenvDefault("KENERSIM_API_KEY", sim.DefaultAPIKey),
		RateLimit:    rateLimit,
	}

	srv := sim.New(cfg, sim.Dependencies{
		Logger: logger,
		Store:  st,
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grp, groupCtx := errgroup.WithContext(runCtx)

	grp.Go(func() error {
		logger.Printf("starting kenersim on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	grp.Go(func() error {
		<-groupCtx.Done()
		logger.Println("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := grp.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
	logger.Println("kenersim stopped")
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
