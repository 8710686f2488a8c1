package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThonyMarckDEV/rci-backend/internal/audit"
	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/catalog"
	"github.com/ThonyMarckDEV/rci-backend/internal/config"
	"github.com/ThonyMarckDEV/rci-backend/internal/httpapi"
	"github.com/ThonyMarckDEV/rci-backend/internal/obs"
	"github.com/ThonyMarckDEV/rci-backend/internal/token"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("RCI_COMMIT"))

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Stores: PostgreSQL when a DSN is configured, in-memory otherwise
	// (dev/test mode, state is lost on restart).
	var (
		authStore    auth.Store
		catalogStore catalog.Store
		ready        httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		pg, err := auth.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pg.Close()
		authStore = pg
		catalogStore = catalog.NewPGStore(pg.DB())
		ready = httpapi.ReadyProbe{DB: pg.DB()}
	} else {
		log.Println("RCI_PG_DSN not set, using in-memory stores")
		authStore = auth.NewMemoryStore()
		catalogStore = catalog.NewMemoryStore()
	}

	tokens, err := token.NewService(cfg.JWTSecret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	authSvc, err := auth.NewService(authStore, tokens,
		auth.WithAuditSink(audit.NewRecorder(authStore.Audit())),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalogStore)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Auth:          authSvc,
		Catalog:       catalogSvc,
		Verifier:      tokens,
		Logs:          authStore.Audit(),
		Ready:         ready,
		Version:       version,
		RateBurst:     cfg.RateBurst,
		RatePerSecond: cfg.RatePerSec,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		CORSOrigins:   cfg.CORSOrigins,
	})
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting rci-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Println("Stopped")
}
