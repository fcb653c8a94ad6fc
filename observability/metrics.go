package observability

import (
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics tracks request and position-health activity for one pool
// engine (Submit/FlashLoan/FillAuction), segmented by pool ID.
type PoolMetrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	auctions    *prometheus.CounterVec
	auctionFill *prometheus.CounterVec
	badDebt     *prometheus.CounterVec
	status      *prometheus.GaugeVec
}

// BackstopMetrics tracks share-ledger and reward-zone activity.
type BackstopMetrics struct {
	deposits   *prometheus.CounterVec
	totalMeter *prometheus.GaugeVec
	q4wQueued  *prometheus.GaugeVec
	claims     *prometheus.CounterVec
}

var (
	poolMetricsOnce sync.Once
	poolRegistry    *PoolMetrics

	backstopMetricsOnce sync.Once
	backstopRegistry    *BackstopMetrics
)

// Pool returns the lazily-initialised pool metrics registry.
func Pool() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolRegistry = &PoolMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "requests_total",
				Help:      "Count of Submit requests segmented by pool and action kind.",
			}, []string{"pool", "action", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "submit_duration_seconds",
				Help:      "Latency distribution for Submit batches.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"pool"}),
			auctions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "auctions_created_total",
				Help:      "Count of auctions created segmented by pool and kind.",
			}, []string{"pool", "kind"}),
			auctionFill: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "auction_fills_total",
				Help:      "Count of auction fills segmented by pool, kind, and completion.",
			}, []string{"pool", "kind", "complete"}),
			badDebt: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "bad_debt_total",
				Help:      "Count of reserves defaulted onto the backstop, segmented by pool.",
			}, []string{"pool"}),
			status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "blend",
				Subsystem: "pool",
				Name:      "status",
				Help:      "Current pool status code (0=AdminActive .. 5=BackstopFrozen).",
			}, []string{"pool"}),
		}
		prometheus.MustRegister(
			poolRegistry.requests,
			poolRegistry.latency,
			poolRegistry.auctions,
			poolRegistry.auctionFill,
			poolRegistry.badDebt,
			poolRegistry.status,
		)
	})
	return poolRegistry
}

// ObserveRequest records the outcome of one request within a Submit batch.
func (m *PoolMetrics) ObserveRequest(poolID, action string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(labelPool(poolID), labelAction(action), outcome).Inc()
}

// ObserveSubmit records the wall-clock duration of a Submit batch.
func (m *PoolMetrics) ObserveSubmit(poolID string, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(labelPool(poolID)).Observe(d.Seconds())
}

// RecordAuctionCreated increments the auction-created counter.
func (m *PoolMetrics) RecordAuctionCreated(poolID string, kind uint8) {
	if m == nil {
		return
	}
	m.auctions.WithLabelValues(labelPool(poolID), auctionKindLabel(kind)).Inc()
}

// RecordAuctionFill increments the auction-fill counter.
func (m *PoolMetrics) RecordAuctionFill(poolID string, kind uint8, complete bool) {
	if m == nil {
		return
	}
	completeLabel := "false"
	if complete {
		completeLabel = "true"
	}
	m.auctionFill.WithLabelValues(labelPool(poolID), auctionKindLabel(kind), completeLabel).Inc()
}

// RecordBadDebt increments the bad-debt counter.
func (m *PoolMetrics) RecordBadDebt(poolID string) {
	if m == nil {
		return
	}
	m.badDebt.WithLabelValues(labelPool(poolID)).Inc()
}

// SetStatus records the pool's current status code.
func (m *PoolMetrics) SetStatus(poolID string, status uint8) {
	if m == nil {
		return
	}
	m.status.WithLabelValues(labelPool(poolID)).Set(float64(status))
}

// Backstop returns the lazily-initialised backstop metrics registry.
func Backstop() *BackstopMetrics {
	backstopMetricsOnce.Do(func() {
		backstopRegistry = &BackstopMetrics{
			deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "backstop",
				Name:      "share_events_total",
				Help:      "Count of deposit/withdraw/donate/draw events segmented by pool and kind.",
			}, []string{"pool", "kind"}),
			totalMeter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "blend",
				Subsystem: "backstop",
				Name:      "total_tokens",
				Help:      "Total underlying tokens held by a pool's backstop module.",
			}, []string{"pool"}),
			q4wQueued: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "blend",
				Subsystem: "backstop",
				Name:      "q4w_shares",
				Help:      "Shares currently queued for withdrawal for a pool.",
			}, []string{"pool"}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "blend",
				Subsystem: "backstop",
				Name:      "claims_total",
				Help:      "Count of emission claims segmented by pool.",
			}, []string{"pool"}),
		}
		prometheus.MustRegister(
			backstopRegistry.deposits,
			backstopRegistry.totalMeter,
			backstopRegistry.q4wQueued,
			backstopRegistry.claims,
		)
	})
	return backstopRegistry
}

// RecordShareEvent increments the share-ledger event counter.
func (m *BackstopMetrics) RecordShareEvent(poolID, kind string) {
	if m == nil {
		return
	}
	m.deposits.WithLabelValues(labelPool(poolID), labelAction(kind)).Inc()
}

// SetTotals records the pool's current total backstop tokens and queued Q4W.
func (m *BackstopMetrics) SetTotals(poolID string, totalTokens, q4wShares *big.Int) {
	if m == nil {
		return
	}
	m.totalMeter.WithLabelValues(labelPool(poolID)).Set(bigToFloat(totalTokens))
	m.q4wQueued.WithLabelValues(labelPool(poolID)).Set(bigToFloat(q4wShares))
}

// RecordClaim increments the claim counter.
func (m *BackstopMetrics) RecordClaim(poolID string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(labelPool(poolID)).Inc()
}

func auctionKindLabel(kind uint8) string {
	switch kind {
	case 0:
		return "user_liquidation"
	case 1:
		return "bad_debt"
	case 2:
		return "interest"
	default:
		return "unknown"
	}
}

func labelPool(poolID string) string {
	trimmed := strings.TrimSpace(poolID)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

func labelAction(action string) string {
	trimmed := strings.TrimSpace(action)
	if trimmed == "" {
		return "unknown"
	}
	return strings.ToLower(trimmed)
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	f := new(big.Float).SetInt(value)
	out, _ := f.Float64()
	return out
}
