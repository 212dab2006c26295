package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay"
	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/health"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/middleware"
)

type appConfig struct {
	AppName  string `env:"APP_NAME" envDefault:"relay"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	logOpts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithAttr(logger.Component(cfg.AppName)),
	}
	if cfg.LogJSON {
		logOpts = append(logOpts, logger.WithJSONFormatter())
	}
	log := logger.New(logOpts...)

	app, err := relay.New(relay.WithLogger(log))
	if err != nil {
		log.Error("failed to create app", logger.Error(err))
		os.Exit(1)
	}

	app.Register("/health/live", health.Liveness())
	app.Register("/health/ready", health.Readiness(log))

	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.CORS())
	app.Use(middleware.LoggingWithLogger(log))
	app.Use(handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		next()
		return nil
	}))
	app.Use(handler.Simple(func(req *handler.Request, res handler.Response) error {
		return res.Send("test")
	}))
	app.Use(middleware.ErrorLoggerWithConfig(middleware.ErrorLoggerConfig{Logger: log}))
	app.Use(middleware.ErrorJSON())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(app.Run(ctx))

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
