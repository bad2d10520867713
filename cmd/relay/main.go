package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/viant/relay"
	"github.com/viant/relay/server"
)

func main() {
	configURL := flag.String("config", "", "config file URL (YAML); defaults apply when empty")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	cfg := relay.DefaultConfig()
	if *configURL != "" {
		if cfg, err = relay.LoadConfig(ctx, *configURL); err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	service, err := relay.NewFromConfig(cfg,
		relay.WithLogger(logger),
		relay.WithTracing("relay", "1.0.0", ""))
	if err != nil {
		logger.Fatal("failed to initialize relay service", zap.Error(err))
	}

	httpServer := server.New(service, server.WithLogger(logger))
	if err := httpServer.ListenAndServe(cfg.Server.Addr); err != nil {
		logger.Fatal("server terminated", zap.Error(err))
	}
}
