// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sentinel starts the Aleutian Sentinel API server.
//
// Aleutian Sentinel turns raw news text into an actionable incident decision:
//   - Multi-provider news retrieval (Tavily search, simulated scouts)
//   - Incident extraction (Fastino API with a heuristic fallback)
//   - Staged reasoning (Senso impact, Reka plan + validation)
//   - Three-level degradation ladder ending in a deterministic mock
//
// Usage:
//
//	go run ./cmd/sentinel
//	go run ./cmd/sentinel -port 9090
//
// With external integrations:
//
//	TAVILY_API_KEY=... REKA_API_KEY=... SENSO_BASE_URL=... go run ./cmd/sentinel
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/decision/health
//
//	# Run the pipeline
//	curl -X POST http://localhost:8080/v1/decision \
//	  -H "Content-Type: application/json" \
//	  -d '{"topic": "earthquake"}'
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/AleutianAI/AleutianSentinel/services/sentinel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	port := flag.Int("port", defaultPort(), "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	configPath := flag.String("config", "", "Optional YAML config file overlaying environment values")
	flag.Parse()

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Set up W3C TraceContext propagation so trace context flows from
	// incoming HTTP headers through the pipeline stages.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	cfg := sentinel.LoadServiceConfigFromEnv()
	if *configPath != "" {
		var err error
		cfg, err = sentinel.LoadServiceConfigFile(cfg, *configPath)
		if err != nil {
			slog.Error("Failed to load config file", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := sentinel.NewService(cfg)
	handlers := sentinel.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-sentinel"))
	if *debug {
		router.Use(gin.Logger())
	}

	// Register routes under /v1
	v1 := router.Group("/v1")
	sentinel.RegisterRoutes(v1, handlers)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Sentinel server")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Aleutian Sentinel server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// defaultPort honors the PORT environment variable used by the deployment
// manifests, falling back to 8080.
func defaultPort() int {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return 8080
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                    ALEUTIAN SENTINEL SERVER                       ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  News-driven incident decisions with total degradation.           ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/decision/health           │  ║
║  │                                                             │  ║
║  │ # Run the decision pipeline                                 │  ║
║  │ curl -X POST http://localhost:%d/v1/decision \        │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"topic": "earthquake"}'                              │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── POST /v1/decision - Run the pipeline for a topic             ║
║  ├── POST /v1/feedback - Acknowledge operator feedback            ║
║  └── GET  /metrics     - Prometheus metrics                       ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port)
}
