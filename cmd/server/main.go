package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"

	"voyager.app/generator/common/id"
	"voyager.app/generator/common/logger"
	"voyager.app/generator/common/otel"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/http/handler"
	"voyager.app/generator/internal/http/middleware"
	httprouter "voyager.app/generator/internal/http/router"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/queue"
	"voyager.app/generator/internal/service"
	"voyager.app/generator/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider when exporting)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "voyager starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	providers := llm.NewConfigured(cfg.OpenAI, cfg.Anthropic)
	if len(providers) == 0 {
		slog.WarnContext(ctx, "no text-generation provider configured; generation requests will fail until a key is set")
	}

	publisher, tailer, closeRedis := setupRedis(ctx, cfg.Redis)
	defer closeRedis()

	services := service.NewServices(cfg, store.NewStores(), providers, publisher)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, tailer)
	server, closeStreams := newHTTPServer(":"+cfg.Port, router)

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Streams never go idle on their own; end them so Shutdown does not wait them out.
	closeStreams()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// newHTTPServer builds the API server. Every request context derives from a
// base context that closeStreams cancels, which ends open SSE streams and
// releases their pollers.
func newHTTPServer(addr string, h http.Handler) (server *http.Server, closeStreams context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		BaseContext:       func(net.Listener) context.Context { return base },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: job and event streams stay open until jobs settle.
		IdleTimeout: 120 * time.Second,
	}, cancel
}

// setupRedis connects the status stream when REDIS_URL is set. Without it
// events are dropped and the events endpoint answers 503.
func setupRedis(ctx context.Context, cfg config.RedisConfig) (queue.Publisher, handler.EventTailer, func()) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "redis disabled (no REDIS_URL); status events are not published")
		return queue.NopPublisher{}, nil, func() {}
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream_prefix", cfg.StatusStream)

	publisher := queue.NewRedisPublisher(client, cfg.StatusStream, slog.Default())
	subscriber := queue.NewSubscriber(client, queue.SubscriberConfig{Prefix: cfg.StatusStream})

	return publisher, subscriber, func() {
		if err := publisher.Close(); err != nil {
			slog.ErrorContext(ctx, "redis close error", "error", err)
		}
	}
}

func setupRouter(cfg config.Config, services *service.Services, tailer handler.EventTailer) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Limiter: limiter,
		Events:  tailer,
	})

	return router
}

const banner = `
██╗   ██╗ ██████╗ ██╗   ██╗ █████╗  ██████╗ ███████╗██████╗
██║   ██║██╔═══██╗╚██╗ ██╔╝██╔══██╗██╔════╝ ██╔════╝██╔══██╗
██║   ██║██║   ██║ ╚████╔╝ ███████║██║  ███╗█████╗  ██████╔╝
╚██╗ ██╔╝██║   ██║  ╚██╔╝  ██╔══██║██║   ██║██╔══╝  ██╔══██╗
 ╚████╔╝ ╚██████╔╝   ██║   ██║  ██║╚██████╔╝███████╗██║  ██║
  ╚═══╝   ╚═════╝    ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═╝
`
