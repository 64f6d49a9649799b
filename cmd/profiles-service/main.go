package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-user-profiles/internal/cache"
	"github.com/pribylovaa/go-user-profiles/internal/config"
	"github.com/pribylovaa/go-user-profiles/internal/metrics"
	"github.com/pribylovaa/go-user-profiles/internal/service"
	profileshttp "github.com/pribylovaa/go-user-profiles/internal/transport/http"
	"github.com/pribylovaa/go-user-profiles/internal/transport/redis"
	"github.com/pribylovaa/go-user-profiles/pkg/redact"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting profiles-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	users := cache.NewUsers(cache.WithLookupObserver(m.ObserveUserLookup))
	svc := service.New(users, m)
	log.Info("service_initialized")

	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 10*time.Second)
		client, err := redis.Dial(redisCtx, cfg.Redis.URL)
		redisCancel()
		if err != nil {
			log.Error("redis_connect_failed",
				slog.String("url", redact.URL(cfg.Redis.URL)),
				slog.String("err", err.Error()),
			)
			rootCancel()
			os.Exit(1)
		}
		rdb = client
		log.Info("redis_connected",
			slog.String("url", redact.URL(cfg.Redis.URL)),
			slog.String("channel", cfg.Redis.Channel),
		)
	}

	var ready int32 // 0 - not ready; 1 - ready
	httpAddr := cfg.HTTP.Addr()

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.Handle("/", profileshttp.NewRouter(svc, profileshttp.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		BasePath: cfg.HTTP.BasePath,
	}))

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	var wg sync.WaitGroup
	consumerCtx, consumerCancel := context.WithCancel(rootCtx)
	if rdb != nil {
		consumer := redis.NewConsumer(rdb, cfg.Redis.Channel, svc, cfg.Timeouts.Service)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(consumerCtx); err != nil {
				log.Error("redis_consumer_failed", slog.String("err", err.Error()))
			}
		}()
	}

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}
	shutdownCancel()

	consumerCancel()
	wg.Wait()

	if rdb != nil {
		_ = rdb.Close()
	}

	rootCancel()

	log.Info("service_stopped", slog.Int("users_cached", users.Len()))
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
