package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cache"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cartview"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/checkout"
	h "github.com/parvesmosarof35/beautyShop-sub000/internal/http"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/poller"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/reconciler"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/remote"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8080"`
	CartServiceURL   string        `envconfig:"CART_SERVICE_URL" default:"http://localhost:8081"`
	OrderServiceURL  string        `envconfig:"ORDER_SERVICE_URL" default:"http://localhost:8082"`
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD" default:""`
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	DebounceInterval time.Duration `envconfig:"DEBOUNCE_INTERVAL" default:"500ms"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	UpstreamTimeout  time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	log.Infof("connected to redis at %s", cfg.RedisAddr)

	upstream := remote.NewHTTPClient(cfg.CartServiceURL, cfg.OrderServiceURL, cfg.UpstreamTimeout)

	feed := notify.NewFeed(log)
	cartCache := cache.NewRedisCache(redisClient)

	lines := reconciler.NewManager(upstream, feed, cfg.DebounceInterval)
	defer lines.Close()
	lines.OnCommit(func(sessionID string) {
		invalidateCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cartCache.Delete(invalidateCtx, sessionID); err != nil {
			log.Warnf("cart cache invalidate after commit: %v", err)
		}
	})

	carts := cartview.NewService(upstream, cartCache, lines, log)
	orchestrator := checkout.NewOrchestrator(upstream, checkout.DefaultSettings(), feed, log)

	completionPoller := poller.New(carts, orchestrator, feed, log, cfg.KafkaBrokers...)
	defer completionPoller.Close()

	pollerCtx, cancelPoller := context.WithCancel(ctx)
	defer cancelPoller()
	go completionPoller.Run(pollerCtx)

	router := h.NewRouter(carts, orchestrator, feed, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	cancelPoller()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("storefront stopped")
}
