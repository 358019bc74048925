package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamcast/bootstrap"
	"github.com/kbukum/streamcast/broadcast"
	"github.com/kbukum/streamcast/config"
	"github.com/kbukum/streamcast/logger"
	"github.com/kbukum/streamcast/sse"
	"github.com/kbukum/streamcast/version"
)

const serviceName = "streamcast"

func main() {
	configPath := flag.String("config", "", "path to config file (default: searched)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(serviceName, version.Get())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	var cfg config.ServiceConfig
	if err := config.LoadConfig(serviceName, &cfg, config.WithConfigFile(configPath)); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	root, err := broadcast.NewFromConfig[Tick](
		broadcast.FromIterator[Tick]("ticker", newTicker(cfg.Source.Interval, cfg.Source.Limit)),
		cfg.Broadcast,
		broadcast.WithLogger(app.Logger),
	)
	if err != nil {
		return err
	}
	ticks := broadcast.NewComponent(root)

	server := sse.NewServer[Tick](cfg.HTTP, ticks,
		sse.WithHealth(app.Components),
		sse.WithService(cfg.Name, cfg.Version),
	)

	if err := app.RegisterComponent(ticks); err != nil {
		return err
	}
	if err := app.RegisterComponent(server); err != nil {
		return err
	}
	app.OnReady(func(context.Context) error {
		app.Logger.Info("Streaming", logger.Fields("addr", server.Addr(), "path", cfg.HTTP.Path))
		return nil
	})
	return app.Run(ctx)
}
