// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the AegisGate policy gateway.
//
// The gateway validates AI agent traffic before it reaches models,
// databases, or wallets:
//   - Two-layer content validation (pattern catalog + semantic classifier)
//   - SQL query guarding with per-policy rules
//   - Transaction and x402 payment policy enforcement
//   - Structured audit logging with optional Postgres persistence
//
// Usage:
//
//	./gateway -config gateway.yaml
//
// Environment Variables:
//
//	GATEWAY_CONFIG - configuration file path (overridden by -config)
//	PORT           - HTTP server port (overrides the config file)
//	JWT_SECRET     - secret for JWT token validation
//	ANTHROPIC_API_KEY - semantic classifier credential
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"aegisgate/platform/config"
	"aegisgate/platform/gateway"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to the gateway configuration file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("GATEWAY_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("invalid PORT %q: %v", port, err)
		}
		cfg.Server.Port = p
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Semantic.APIKey == "" {
		cfg.Semantic.APIKey = key
	}

	app, err := gateway.NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to build gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("gateway exited: %v", err)
	}
}
