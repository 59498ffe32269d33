// main wires the certificate service: config, storage, anchor client, PDF
// renderer, audit trail, and the HTTP router. Business logic lives in the
// internal packages; this file only composes them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"certo/internal/anchor"
	"certo/internal/audit"
	"certo/internal/certificate/artifact"
	"certo/internal/certificate/cache"
	"certo/internal/certificate/handler"
	"certo/internal/certificate/metrics"
	"certo/internal/certificate/service"
	"certo/internal/certificate/store"
	"certo/internal/pdf"
	"certo/internal/platform/config"
	"certo/internal/platform/httpserver"
	"certo/internal/platform/logger"
	platformredis "certo/internal/platform/redis"
	"certo/internal/token"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Certificate store: postgres in production, in-memory otherwise.
	var certStore store.Store
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()
		certStore = store.NewPostgres(pool)
	} else {
		certStore = store.NewInMemory()
		log.Warn("POSTGRES_URL not set, using in-memory certificate store")
	}

	// Audit trail: postgres-backed log when available, fanned out to Kafka
	// when brokers are configured.
	var auditStore audit.Store
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("audit db connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	var publisher audit.Publisher = audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(64),
		audit.WithLogger(log),
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := audit.NewKafkaPublisher(ctx, cfg.Kafka, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err.Error())
			os.Exit(1)
		}
		publisher = audit.NewFanout(log, publisher, kafkaPub)
	}
	defer publisher.Close()

	// Verification cache is optional; a nil cache degrades to direct reads.
	var verifyCache *cache.VerifyCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		verifyCache = cache.NewVerifyCache(redisClient.Client, cfg.Redis.VerifyTTL)
	}

	// Anchor client: real chain when an RPC endpoint is configured, otherwise
	// the in-memory ledger.
	var anchorClient anchor.Client
	ownerAddress := "certo-local"
	if cfg.Anchor.RPCURL != "" {
		ethClient, err := anchor.NewEthClient(ctx, cfg.Anchor, log)
		if err != nil {
			log.Error("anchor client init failed", "error", err.Error())
			os.Exit(1)
		}
		defer ethClient.Close()
		anchorClient = ethClient
		ownerAddress = ethClient.WalletAddress()
	} else {
		anchorClient = anchor.NewLedger()
		log.Warn("ANCHOR_RPC_URL not set, using in-memory ledger")
	}

	vault, err := artifact.NewVault(cfg.PDF.OutputDir)
	if err != nil {
		log.Error("artifact vault init failed", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey, "certo")
	certs := service.New(
		certStore,
		anchorClient,
		pdf.NewRenderer(cfg.PDF.TemplatePath, cfg.PDF.LogoPath),
		vault,
		log,
		service.WithCache(verifyCache),
		service.WithAudit(publisher),
		service.WithMetrics(m),
		service.WithOwnerAddress(ownerAddress),
		service.WithRevokeOnChain(cfg.Anchor.RevokeOnChain),
	)

	router := chi.NewRouter()
	handler.New(certs, log, m, tokens, cfg.AdminTokenHash).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting certo", "addr", cfg.Addr, "env", cfg.Env)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
