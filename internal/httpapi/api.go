// Package httpapi is the HTTP layer: routing, authentication middleware and
// the JSON wire contract.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/catalog"
	"github.com/ThonyMarckDEV/rci-backend/internal/obs"
	"github.com/ThonyMarckDEV/rci-backend/internal/token"
)

// TokenVerifier checks bearer tokens presented by clients.
type TokenVerifier interface {
	Parse(ctx context.Context, raw string) (*token.Claims, error)
}

// ReadyProbe reports whether the backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the API's collaborators.
type Config struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Verifier TokenVerifier
	Logs     auth.AuditStore
	Ready    ReadyProbe
	Version  string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
	CORSOrigins   []string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	catalog    *catalog.Service
	verifier   TokenVerifier
	logs       auth.AuditStore
	readyProbe ReadyProbe
	version    string

	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
	corsOrigins  []string
}

// New builds the router. Every route the service exposes is registered here.
func New(cfg Config) (*API, error) {
	if cfg.Auth == nil {
		return nil, errors.New("httpapi: auth service is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("httpapi: catalog service is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("httpapi: token verifier is required")
	}
	if cfg.Logs == nil {
		return nil, errors.New("httpapi: audit store is required")
	}
	a := &API{
		mux:          http.NewServeMux(),
		auth:         cfg.Auth,
		catalog:      cfg.Catalog,
		verifier:     cfg.Verifier,
		logs:         cfg.Logs,
		readyProbe:   cfg.Ready,
		version:      cfg.Version,
		rateBurst:    cfg.RateBurst,
		ratePerSec:   cfg.RatePerSecond,
		maxBodyBytes: cfg.MaxBodyBytes,
		corsOrigins:  cfg.CORSOrigins,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session flows
	a.mux.HandleFunc("/api/login", a.handleLogin)
	a.mux.HandleFunc("/api/logout", a.handleLogout)
	a.mux.HandleFunc("/api/refresh-token", a.handleRefreshToken)
	a.mux.HandleFunc("/api/check-status", a.handleCheckStatus)
	a.mux.HandleFunc("/api/update-activity", a.handleUpdateActivity)
	a.mux.HandleFunc("/api/account/password", a.handleOwnPassword)

	// public storefront
	a.mux.HandleFunc("/api/catalog/products", a.handleStorefrontProducts)
	a.mux.HandleFunc("/api/catalog/categories", a.handleStorefrontCategories)

	// catalog administration
	a.mux.HandleFunc("/api/products", a.handleProducts)
	a.mux.HandleFunc("/api/products/", a.handleProductByID)
	a.mux.HandleFunc("/api/categories", a.handleCategories)
	a.mux.HandleFunc("/api/categories/", a.handleCategoryByID)

	// user administration
	a.mux.HandleFunc("/api/admin/users", a.handleUsers)
	a.mux.HandleFunc("/api/admin/users/", a.handleUserByID)
	a.mux.HandleFunc("/api/admin/logs", a.handleLogs)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the full middleware chain around the router.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h, a.corsOrigins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "rci-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "rci-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
