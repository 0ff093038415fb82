// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package gateway assembles the validators and guards behind an HTTP
// API. One App owns the shared audit trail, metrics, and spending store
// so the pipeline, transaction guard, and payment policy see a single
// view of the world.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"aegisgate/platform/config"
	"aegisgate/platform/guard/audit"
	"aegisgate/platform/guard/dbguard"
	"aegisgate/platform/guard/pipeline"
	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/guard/x402"
	"aegisgate/platform/semantic/llmguard"
	"aegisgate/platform/shared/logger"
)

// App is the assembled gateway. Build one with NewApp, expose it with
// Router or run it with Run.
type App struct {
	cfg config.GatewayConfig
	log *logger.Logger

	validator *pipeline.LayeredValidator
	dbGuard   *dbguard.DatabaseGuard
	txGuard   *txguard.TransactionGuard
	payments  *x402.Policy
	store     txguard.Store

	trail    *audit.Trail
	metrics  *audit.Metrics
	queue    *audit.Queue
	registry *prometheus.Registry

	auth             *authenticator
	semanticOverride pipeline.SemanticClient
	ready            atomic.Bool
}

// AppOption configures an App before wiring.
type AppOption func(*App)

// WithAppLogger injects the structured logger.
func WithAppLogger(l *logger.Logger) AppOption {
	return func(a *App) { a.log = l }
}

// WithStore overrides the spending store, mainly for tests.
func WithStore(s txguard.Store) AppOption {
	return func(a *App) { a.store = s }
}

// WithSemanticClient overrides the semantic classifier, mainly for
// tests. Takes effect only when the pipeline enables the layer.
func WithSemanticClient(c pipeline.SemanticClient) AppOption {
	return func(a *App) { a.semanticOverride = c }
}

// NewApp wires the gateway components from the configuration.
func NewApp(cfg config.GatewayConfig, opts ...AppOption) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      logger.New("gateway"),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.metrics = audit.NewMetrics(a.registry)
	a.trail = audit.NewTrail(cfg.Audit.MaxEntries)

	if cfg.Audit.PostgresDSN != "" {
		sink, err := audit.NewPostgresSink(cfg.Audit.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("audit sink: %w", err)
		}
		queue, err := audit.NewQueue(sink, cfg.Audit.QueueSize, cfg.Audit.Workers, cfg.Audit.FallbackPath)
		if err != nil {
			return nil, fmt.Errorf("audit queue: %w", err)
		}
		a.queue = queue
		a.trail.WithSink(queue)
	}

	if a.store == nil {
		if cfg.Wallet.RedisURL != "" {
			redisOpts, err := redis.ParseURL(cfg.Wallet.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("redis url: %w", err)
			}
			a.store = txguard.NewRedisStore(redis.NewClient(redisOpts))
		} else {
			a.store = txguard.NewSpendingTracker()
		}
	}

	if err := a.buildValidator(); err != nil {
		return nil, err
	}
	if err := a.buildDBGuard(); err != nil {
		return nil, err
	}
	a.buildTxGuard()
	a.buildPayments()

	a.auth = newAuthenticator(cfg.Server.APIKey, cfg.Server.JWTSecret, a.log)
	a.ready.Store(true)
	return a, nil
}

func (a *App) buildValidator() error {
	popts := []pipeline.Option{
		pipeline.WithName("gateway"),
		pipeline.WithLogger(a.log),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithTrail(a.trail),
	}

	pcfg := a.cfg.Pipeline.ToPipeline()
	if pcfg.UseSemantic {
		client := a.semanticOverride
		if client == nil {
			c, err := llmguard.NewClient(llmguard.Config{
				APIKey:  a.cfg.Semantic.APIKey,
				BaseURL: a.cfg.Semantic.BaseURL,
				Model:   a.cfg.Semantic.Model,
			})
			if err != nil {
				return fmt.Errorf("semantic client: %w", err)
			}
			client = c
		}
		popts = append(popts, pipeline.WithSemanticClient(client))
	}

	v, err := pipeline.NewLayeredValidator(pcfg, popts...)
	if err != nil {
		return err
	}
	a.validator = v
	return nil
}

func (a *App) buildDBGuard() error {
	policy, err := dbguard.PolicyByName(a.cfg.Database.Policy)
	if err != nil {
		return err
	}
	if len(a.cfg.Database.AllowedTables) > 0 {
		policy.AllowedTables = toSet(a.cfg.Database.AllowedTables)
	}
	if len(a.cfg.Database.BlockedTables) > 0 {
		policy.BlockedTables = toSet(a.cfg.Database.BlockedTables)
	}
	policy.SensitiveColumns = append(policy.SensitiveColumns, a.cfg.Database.SensitiveColumns...)

	g, err := dbguard.NewDatabaseGuard(policy,
		dbguard.WithDBLogger(a.log),
		dbguard.WithDBTrail(a.trail),
		dbguard.WithDBMetrics(a.metrics))
	if err != nil {
		return err
	}
	a.dbGuard = g
	return nil
}

func (a *App) buildTxGuard() {
	w := a.cfg.Wallet
	chainPolicy := txguard.DefaultChainPolicy(w.Chain)
	chainPolicy.Limits = w.Limits
	if len(w.BlockedContracts) > 0 {
		chainPolicy.BlockedContracts = toSet(w.BlockedContracts)
	}
	if len(w.AllowedContracts) > 0 {
		chainPolicy.AllowedContracts = toSet(w.AllowedContracts)
	}

	a.txGuard = txguard.NewTransactionGuard(txguard.GuardConfig{
		BlockUnlimitedApprovals:         w.BlockUnlimited,
		RequireChecksums:                w.RequireChecksums,
		RequirePurposeForHighRisk:       w.RequirePurpose,
		RequireConfirmationForHighValue: w.ConfirmHighValue,
		StrictFiduciary:                 w.StrictFiduciary,
	},
		txguard.WithChainPolicy(chainPolicy),
		txguard.WithTracker(a.store),
		txguard.WithGuardLogger(a.log),
		txguard.WithGuardTrail(a.trail),
		txguard.WithGuardMetrics(a.metrics))
}

func (a *App) buildPayments() {
	p := a.cfg.Payments
	a.payments = x402.NewPolicy(x402.PolicyConfig{
		Limits:                 p.Limits,
		RequireHTTPS:           p.RequireHTTPS,
		AllowUnknownEndpoints:  p.AllowUnknown,
		AllowUnknownRecipients: p.AllowUnknown,
		BlockedRecipients:      toSet(p.BlockedRecipients),
		BlockedEndpoints:       toSet(p.BlockedEndpoints),
	},
		x402.WithPolicyTracker(a.store),
		x402.WithPolicyLogger(a.log),
		x402.WithPolicyTrail(a.trail))
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// Router builds the HTTP routing table. Health and metrics are open;
// everything under /api requires authentication.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", a.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(a.auth.middleware)

	api.HandleFunc("/validate/input", a.handleValidateInput).Methods("POST")
	api.HandleFunc("/validate/output", a.handleValidateOutput).Methods("POST")
	api.HandleFunc("/validate/plan", a.handleValidatePlan).Methods("POST")

	api.HandleFunc("/guard/query", a.handleGuardQuery).Methods("POST")
	api.HandleFunc("/guard/transaction", a.handleGuardTransaction).Methods("POST")
	api.HandleFunc("/guard/transaction/complete", a.handleTransactionComplete).Methods("POST")
	api.HandleFunc("/guard/defi", a.handleGuardDeFi).Methods("POST")
	api.HandleFunc("/guard/spending/{wallet}", a.handleSpendingSummary).Methods("GET")

	api.HandleFunc("/x402/before", a.handleX402Before).Methods("POST")
	api.HandleFunc("/x402/after", a.handleX402After).Methods("POST")

	api.HandleFunc("/stats", a.handleStats).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves the gateway until the context is canceled, then shuts the
// server and the audit queue down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  a.cfg.Server.ReadTimeout(),
		WriteTimeout: a.cfg.Server.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("gateway listening", map[string]interface{}{"port": a.cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if a.queue != nil {
		return a.queue.Shutdown(shutdownCtx)
	}
	return nil
}
