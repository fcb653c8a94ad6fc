// Command poold serves one isolated lending pool's Submit/FlashLoan/auction
// surface over HTTP, the way the teacher's services_lending/lending daemon
// serves one lending market over gRPC.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
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
	"blendpool/native/pool"
	"blendpool/native/pool/auction"
	"blendpool/observability"
	obslog "blendpool/observability/logging"
	"blendpool/observability/otel"
	"blendpool/oracle"
	"blendpool/store"
	"blendpool/token"
)

const oracleDecimals = 7

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "poold.yaml", "path to poold config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("poold: load config: %v", err)
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

	poolStore := store.NewPoolStore(db)
	backstopStore := store.NewBackstopStore(db)

	if err := bootstrap(cfg, poolStore); err != nil {
		logger.Error("bootstrap genesis", "error", err)
		os.Exit(1)
	}

	sink := observability.NewEventSink(logger)
	tokens := token.NewResolver(db.DB(), cfg.PoolID)
	priceOracle := oracle.NewStoreOracle(db.DB(), oracleDecimals)
	pauses := nativecommon.NewPauseRegistry()

	engine := pool.NewEngine(cfg.PoolID, poolStore, tokens, priceOracle, sink)
	engine.SetPauses(pauses)
	engine.SetEmissionState(poolStore)

	// Both modules share the same badger store, so the bad-debt/interest
	// auction settlement hook stays a direct in-process call rather than a
	// second network hop to a standalone backstopd.
	backstopToken := token.NewLedgerToken(db.DB(), "BLND-"+cfg.PoolID, cfg.PoolID+"-backstop")
	backstopLPPool := backstop.NewPassthroughLPPool(backstopToken)
	backstopEngine := backstop.NewEngine(backstopStore, backstopToken, backstopLPPool, sink, backstop.DefaultConfig())
	backstopEngine.SetPauses(pauses)
	engine.SetBackstopCoordinator(backstopEngine)

	emissions := pool.NewEmissionsEngine(poolStore, poolStore, tokens.MustResolve("BLND-"+cfg.PoolID))

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

		h := &poolHandler{engine: engine, emissions: emissions, pauses: pauses, poolID: cfg.PoolID, metrics: observability.Pool(), log: logger}
		r.Post("/v1/submit", h.submit)
		r.Post("/v1/flash-loan", h.flashLoan)
		r.Post("/v1/auctions/fill", h.fillAuction)
		r.Post("/v1/auctions/delete-stale", h.deleteStaleAuction)
		r.Post("/v1/emissions/claim", h.claimEmissions)
		r.Post("/v1/admin/pause", h.setPause)
		r.Post("/v1/admin/reserve/queue-set", h.queueSetReserve)
		r.Post("/v1/admin/reserve/cancel-set", h.cancelSetReserve)
		r.Post("/v1/admin/reserve/set", h.setReserve)
	})

	server := &http.Server{Addr: cfg.ListenAddress, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("poold listening", "addr", cfg.ListenAddress, "pool", cfg.PoolID)
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

// bootstrap seeds pool config/reserves/status from the genesis file the
// first time poold runs against a fresh store.
func bootstrap(cfg config.Config, poolStore *store.PoolStore) error {
	if cfg.GenesisPath == "" {
		return nil
	}
	if _, ok, err := poolStore.GetPoolConfig(cfg.PoolID); err != nil {
		return err
	} else if ok {
		return nil
	}
	poolCfg, seeds, err := pool.LoadGenesis(cfg.GenesisPath)
	if err != nil {
		return err
	}
	if err := poolStore.PutPoolConfig(cfg.PoolID, &poolCfg); err != nil {
		return err
	}
	if err := poolStore.PutStatus(cfg.PoolID, pool.StatusAdminActive); err != nil {
		return err
	}
	now := uint64(0)
	for _, seed := range seeds {
		reserve := pool.NewReserve(seed.Config, now)
		if err := poolStore.PutReserve(cfg.PoolID, seed.Config.Index, seed.Asset, reserve); err != nil {
			return err
		}
	}
	return nil
}

type poolHandler struct {
	engine    *pool.Engine
	emissions *pool.EmissionsEngine
	pauses    *nativecommon.PauseRegistry
	poolID    string
	metrics   *observability.PoolMetrics
	log       *slog.Logger
}

type submitRequestBody struct {
	Requests     []pool.Request `json:"requests"`
	Now          uint64         `json:"now"`
	CurrentBlock uint64         `json:"current_block"`
}

func (h *poolHandler) submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	start := time.Now()
	positions, err := h.engine.Submit(user, body.Requests, body.Now, body.CurrentBlock)
	h.metrics.ObserveSubmit(h.poolID, time.Since(start))
	if err != nil {
		h.metrics.ObserveRequest(h.poolID, "submit", err)
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	h.metrics.ObserveRequest(h.poolID, "submit", nil)
	httpapi.WriteJSON(w, http.StatusOK, positions)
}

type flashLoanRequestBody struct {
	ReserveIndex uint32   `json:"reserve_index"`
	Amount       *big.Int `json:"amount"`
	Now          uint64   `json:"now"`
}

func (h *poolHandler) flashLoan(w http.ResponseWriter, r *http.Request) {
	var body flashLoanRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	// The receiver callback is a same-request no-op repayment: an HTTP
	// caller cannot run code inside the daemon's process, so the borrowed
	// amount is expected back in full before the handler returns success.
	err := h.engine.FlashLoan(user, body.ReserveIndex, body.Amount, func(*big.Int) error { return nil }, body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type fillAuctionRequestBody struct {
	Kind         auction.Kind `json:"kind"`
	AuctionUser  string       `json:"auction_user"`
	FillPercent  uint64       `json:"fill_percent"`
	Now          uint64       `json:"now"`
	CurrentBlock uint64       `json:"current_block"`
}

func (h *poolHandler) fillAuction(w http.ResponseWriter, r *http.Request) {
	var body fillAuctionRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	filler := httpapi.SubjectFromContext(r.Context())
	result, err := h.engine.FillAuction(filler, body.Kind, body.AuctionUser, body.FillPercent, body.Now, body.CurrentBlock)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

type deleteStaleAuctionRequestBody struct {
	Kind         auction.Kind `json:"kind"`
	AuctionUser  string       `json:"auction_user"`
	CurrentBlock uint64       `json:"current_block"`
}

func (h *poolHandler) deleteStaleAuction(w http.ResponseWriter, r *http.Request) {
	var body deleteStaleAuctionRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.DeleteStaleAuction(body.Kind, body.AuctionUser, body.CurrentBlock); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type claimEmissionsRequestBody struct {
	ReserveIndex uint32 `json:"reserve_index"`
	SupplySide   bool   `json:"supply_side"`
	Now          uint64 `json:"now"`
}

func (h *poolHandler) claimEmissions(w http.ResponseWriter, r *http.Request) {
	var body claimEmissionsRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := httpapi.SubjectFromContext(r.Context())
	amount, err := h.emissions.Claim(h.poolID, user, body.ReserveIndex, body.SupplySide, body.Now)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

type setPauseRequestBody struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

func (h *poolHandler) setPause(w http.ResponseWriter, r *http.Request) {
	var body setPauseRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.pauses.SetPaused(body.Module, body.Paused)
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type queueSetReserveRequestBody struct {
	ReserveIndex uint32             `json:"reserve_index"`
	Config       pool.ReserveConfig `json:"config"`
	Now          uint64             `json:"now"`
}

func (h *poolHandler) queueSetReserve(w http.ResponseWriter, r *http.Request) {
	var body queueSetReserveRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.QueueSetReserveConfig(body.ReserveIndex, body.Config, body.Now); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type cancelSetReserveRequestBody struct {
	ReserveIndex uint32 `json:"reserve_index"`
}

func (h *poolHandler) cancelSetReserve(w http.ResponseWriter, r *http.Request) {
	var body cancelSetReserveRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.CancelSetReserveConfig(body.ReserveIndex); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

type setReserveRequestBody struct {
	ReserveIndex uint32 `json:"reserve_index"`
	Now          uint64 `json:"now"`
}

func (h *poolHandler) setReserve(w http.ResponseWriter, r *http.Request) {
	var body setReserveRequestBody
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.engine.SetReserveConfig(body.ReserveIndex, body.Now); err != nil {
		httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, nil)
}

