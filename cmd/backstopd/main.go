// Command backstopd serves the shared backstop module's deposit/Q4W/reward
// zone surface over HTTP. Unlike poold, one backstopd instance can back
// every pool registered in its reward zone: every request names its pool ID
// explicitly rather than the daemon being pinned to one.
package main

import (
	"context"
	"flag"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blendpool/config"
	"blendpool/httpapi"
	"blendpool/native/backstop"
	nativecommon "blendpool/native/common"
	"blendpool/observability"
	obslog "blendpool/observability/logging"
	"blendpool/observability/otel"
	"blendpool/store"
	"blendpool/token"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "backstopd.yaml", "path to backstopd config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("backstopd: load config: %v", err)
	}

	logger := obslog.Setup(cfg.Observability.ServiceName, cfg.PoolID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := otel.Init(ctx, otel.Config{
		ServiceName: cfg.Observability.ServiceName,
		PoolID:      cfg.PoolID,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		Headers:     otel.ParseHeaders(cfg.Observability.OTLPHeaders),
		Metrics:     cfg.Observability.EnableMetrics,
		Traces:      cfg.Observability.EnableTraces,
	})
	if err != nil {
		logger.Error("init telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("shutdown telemetry", "error", err)
		}
	}()

	db, err := store.Open(store.Config{Dir: cfg.StorePath})
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backstopStore := store.NewBackstopStore(db)
	sink := observability.NewEventSink(logger)
	pauses := nativecommon.NewPauseRegistry()

	backstopToken := token.NewLedgerToken(db.DB(), "BLND", "backstop-module")
	lpPool := backstop.NewPassthroughLPPool(backstopToken)
	engine := backstop.NewEngine(backstopStore, backstopToken, lpPool, sink, backstop.DefaultConfig())
	engine.SetPauses(pauses)

	throttle := nativecommon.NewSubmitThrottle(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	auth := httpapi.NewAuthenticator(cfg.Auth, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(httpapi.ThrottleMiddleware(throttle))

		h := &backstopHandler{engine: engine, pauses: pauses, metrics: observability.Backstop()}
		r.Post("/v1/deposit", h.deposit)
		r.Post("/v1/q4w/queue", h.queueWithdrawal)
		r.Post("/v1/q4w/dequeue", h.dequeueWithdrawal)
		r.Post("/v1/withdraw", h.withdraw)
		r.Post("/v1/donate", h.donate)
		r.Post("/v1/admin/draw", h.draw)
		r.Post("/v1/admin/reward-zone/add", h.addRewardZone)
		r.Post("/v1/admin/reward-zone/remove", h.removeRewardZone)
		r.Post("/v1/admin/distribute", h.distribute)
		r.Post("/v1/admin/gulp-emissions", h.gulpEmissions)
		r.Post("/v1/admin/drop", h.drop)
		r.Post("/v1/claim", h.claim)
		r.Post("/v1/admin/pause", h.setPause)
	})

	server := &http.Server{Addr: cfg.ListenAddress, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("backstopd listening", "addr", cfg.ListenAddress)
		if cfg.TLS.CertPath != "" {
			serverErr <- server.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath)
		} else {
			serverErr <- server.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			_ = server.Close()
		}
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("serve http", "error", err)
			os.Exit(1)
		}
	}
}

type backstopHandler struct {
	engine  *backstop.Engine
	pauses  *nativecommon.PauseRegistry
	metrics *observability.BackstopMetrics
}

type poolScopedRequestBody struct {
	PoolID string   `json:"pool_id"`
	Amount *big.Int `json:"amount"`
	Now    uint64   `json:"now"`
}

func (h *backstopHandler) deposit(w http.ResponseWriter, r *http.Request) {
	var body poolScopedRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	shares, err := h.engine.Deposit(body.PoolID, user, body.Amount)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"shares": shares.String()})
}

type q4wRequestBody struct {
	PoolID string   `json:"pool_id"`
	Shares *big.Int `json:"shares"`
	Now    uint64   `json:"now"`
}

func (h *backstopHandler) queueWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body q4wRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	if err := h.engine.QueueWithdrawal(body.PoolID, user, body.Shares, body.Now); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

func (h *backstopHandler) dequeueWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body q4wRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	if err := h.engine.DequeueWithdrawal(body.PoolID, user, body.Shares); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

func (h *backstopHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	var body q4wRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	amount, err := h.engine.Withdraw(body.PoolID, user, body.Shares, body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

func (h *backstopHandler) donate(w http.ResponseWriter, r *http.Request) {
	var body poolScopedRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	donor := httpapi.SubjectFromContext(r.Context())
	if err := h.engine.Donate(body.PoolID, donor, body.Amount); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type drawRequestBody struct {
	PoolID    string   `json:"pool_id"`
	Recipient string   `json:"recipient"`
	Amount    *big.Int `json:"amount"`
}

func (h *backstopHandler) draw(w http.ResponseWriter, r *http.Request) {
	var body drawRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.Draw(body.PoolID, body.Recipient, body.Amount); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type rewardZoneRequestBody struct {
	PoolID    string `json:"pool_id"`
	ToSwapOut string `json:"to_swap_out"`
}

func (h *backstopHandler) addRewardZone(w http.ResponseWriter, r *http.Request) {
	var body rewardZoneRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.AddRewardZone(body.PoolID, body.ToSwapOut); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

func (h *backstopHandler) removeRewardZone(w http.ResponseWriter, r *http.Request) {
	var body rewardZoneRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.RemoveRewardZone(body.PoolID); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type distributeRequestBody struct {
	Now uint64 `json:"now"`
}

func (h *backstopHandler) distribute(w http.ResponseWriter, r *http.Request) {
	var body distributeRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := h.engine.Distribute(body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

type gulpEmissionsRequestBody struct {
	PoolID string `json:"pool_id"`
	Now    uint64 `json:"now"`
}

func (h *backstopHandler) gulpEmissions(w http.ResponseWriter, r *http.Request) {
	var body gulpEmissionsRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	backstopEmis, poolEmis, err := h.engine.GulpEmissions(body.PoolID, body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{
		"backstop_emissions": backstopEmis.String(),
		"pool_emissions":     poolEmis.String(),
	})
}

type dropRequestBody struct {
	PoolID string `json:"pool_id"`
}

func (h *backstopHandler) drop(w http.ResponseWriter, r *http.Request) {
	var body dropRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.Drop(body.PoolID); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type claimRequestBody struct {
	Pools    []string `json:"pools"`
	MinLPOut *big.Int `json:"min_lp_out"`
	Now      uint64   `json:"now"`
}

func (h *backstopHandler) claim(w http.ResponseWriter, r *http.Request) {
	var body claimRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	lpMinted, err := h.engine.Claim(user, body.Pools, body.MinLPOut, body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"lp_minted": lpMinted.String()})
}

type setPauseRequestBody struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

func (h *backstopHandler) setPause(w http.ResponseWriter, r *http.Request) {
	var body setPauseRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.pauses.SetPaused(body.Module, body.Paused)
	httpapi.WriteJSON(w, http.StatusOK, nil)
}
