package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.elastic.co/ecslogrus"

	"github.com/chanombude/twitter-go-client/internal/api"
	"github.com/chanombude/twitter-go-client/internal/cache"
	"github.com/chanombude/twitter-go-client/internal/cache/keys"
	"github.com/chanombude/twitter-go-client/internal/log"
	"github.com/chanombude/twitter-go-client/internal/metrics"
	"github.com/chanombude/twitter-go-client/internal/query"
	"github.com/chanombude/twitter-go-client/internal/session"
	"github.com/chanombude/twitter-go-client/internal/stream"
)

var version = "dev"

const pkgKey = "pkg"

type config struct {
	LoggerLevel        logrus.Level  `envconfig:"LOG_LEVEL" default:"info"`
	LogToEcs           bool          `envconfig:"LOG_TO_ECS" default:"false"`
	APIBaseURL         string        `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	TokenFile          string        `envconfig:"TOKEN_FILE" default:".twitter-token"`
	MetricsAddress     string        `envconfig:"METRICS_ADDRESS" default:":9090"`
	PageSize           int           `envconfig:"PAGE_SIZE" default:"20"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UnreadPollInterval time.Duration `envconfig:"UNREAD_POLL_INTERVAL" default:"5m"`
}

func main() {
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version)
		return
	}

	_ = godotenv.Load()

	// init main config
	cfg := new(config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}

	// init logger
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(cfg.LoggerLevel)
	logrusLogger.SetFormatter(&nested.Formatter{
		FieldsOrder:     []string{pkgKey},
		TimestampFormat: "01-02|15:04:05",
	})

	if cfg.LogToEcs {
		logrusLogger.SetFormatter(&ecslogrus.Formatter{})
	}

	logger := log.NewLogger(logrusLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// the refresh endpoint rotates an http-only cookie, so the client needs a jar
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{Jar: jar, Timeout: cfg.HTTPTimeout}

	apiClient := api.NewClient(cfg.APIBaseURL, httpClient, logger.WithField(pkgKey, "api"), m)

	sessions := session.NewManager(apiClient, cfg.TokenFile, logger.WithField(pkgKey, "session"), m)
	apiClient.SetAuth(sessions, sessions)

	store := cache.NewStore(logger.WithField(pkgKey, "cache"), m)

	queries := query.NewService(apiClient, store, cfg.PageSize, logger.WithField(pkgKey, "query"))

	if err = sessions.Bootstrap(ctx); err != nil {
		logger.WithError(err).Warn("session bootstrap failed, starting anonymous")
	}

	if pages, err := queries.LoadGlobalFeed(ctx); err != nil {
		logger.WithError(err).Warn("warming global feed")
	} else if len(pages) > 0 {
		logger.WithField("tweets", len(pages[0].Content)).Info("global feed warmed")
	}

	// streaming clients need no call timeout
	streamHTTP := &http.Client{Jar: jar}

	watcher := stream.NewWatcher(cfg.APIBaseURL, streamHTTP, sessions, store, logger.WithField(pkgKey, "stream"), m)
	go watcher.Run(ctx, sessions.Watch())

	poller := stream.NewPoller(apiClient, sessions, store, cfg.UnreadPollInterval, logger.WithField(pkgKey, "poller"))
	go poller.Run(ctx)

	notifications := store.Subscribe(keys.Notifications)
	go func() {
		for key := range notifications {
			logger.WithField("key", string(key)).Debug("notification cache updated")
		}
	}()

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	logger.Info("client started")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = metricsServer.Shutdown(shutdownCtx)
	store.Unsubscribe(notifications)
}
