// cmd/fusiond/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/fusiond/pkg/config"
	"github.com/carverauto/fusiond/pkg/fusion"
	"github.com/carverauto/fusiond/pkg/lifecycle"
	"github.com/carverauto/fusiond/pkg/metrics"
	"github.com/carverauto/fusiond/pkg/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	configFile := flag.String("config", "", "Path to JSON configuration file (optional)")
	flag.Parse()

	cfg := config.ServiceConfig{
		ListenAddr: fmt.Sprintf(":%d", *port),
	}

	if *configFile != "" {
		if err := config.LoadAndValidate(*configFile, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if cfg.ListenAddr == "" {
			cfg.ListenAddr = fmt.Sprintf(":%d", *port)
		}
	}

	registry := metrics.NewRegistry()
	engine := fusion.NewEngine()

	if cfg.Fusion != nil {
		if err := engine.SetConfig(*cfg.Fusion); err != nil {
			log.Fatalf("Invalid fusion config: %v", err)
		}
	}

	router := server.NewRouter()
	server.NewHandlers(engine, registry, registry).Register(router)

	srv := server.New(server.Config{
		ListenAddr:     cfg.ListenAddr,
		Workers:        cfg.Workers,
		QueueSize:      cfg.QueueSize,
		MaxConnections: cfg.MaxConnections,
		AcceptRate:     cfg.AcceptRate,
		ReadTimeout:    time.Duration(cfg.ReadTimeout),
		WriteTimeout:   time.Duration(cfg.WriteTimeout),
	}, router, registry)

	if err := lifecycle.Run(context.Background(), &lifecycle.Options{
		ServiceName:     "fusiond",
		Service:         srv,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeout),
	}); err != nil {
		log.Fatalf("Service failed: %v", err)
	}
}
