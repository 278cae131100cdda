package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClmmMetrics holds all Prometheus metrics for the clmm module
type ClmmMetrics struct {
	// Swap metrics
	SwapsTotal   *prometheus.CounterVec
	SwapSteps    prometheus.Histogram
	SwapFeeBps   prometheus.Histogram
	TickCrossing *prometheus.CounterVec

	// Liquidity metrics
	LiquidityOps     *prometheus.CounterVec
	TickArraysActive *prometheus.GaugeVec
	TickArrayEvents  *prometheus.CounterVec

	// JIT metrics
	JitQuotes    *prometheus.CounterVec
	JitFills     *prometheus.CounterVec
	JitQuoteSize prometheus.Histogram
	JitToxicity  *prometheus.GaugeVec

	// Oracle metrics
	OracleWrites       prometheus.Counter
	OracleDegradations *prometheus.CounterVec
}

var (
	clmmMetricsOnce sync.Once
	clmmMetrics     *ClmmMetrics
)

// NewClmmMetrics creates and registers clmm metrics (singleton pattern)
func NewClmmMetrics() *ClmmMetrics {
	clmmMetricsOnce.Do(func() {
		clmmMetrics = &ClmmMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "swaps_total",
					Help:      "Total number of swaps by outcome",
				},
				[]string{"pool_id", "status"},
			),
			SwapSteps: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "swap_steps",
					Help:      "Number of tick-range steps per swap",
					Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
				},
			),
			SwapFeeBps: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "swap_fee_bps",
					Help:      "Dynamic fee charged per swap in basis points",
					Buckets:   []float64{10, 25, 50, 75, 100, 200, 500, 1000},
				},
			),
			TickCrossing: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "tick_crossings_total",
					Help:      "Initialized ticks crossed by swaps",
				},
				[]string{"pool_id"},
			),

			LiquidityOps: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "liquidity_operations_total",
					Help:      "Liquidity additions and removals",
				},
				[]string{"pool_id", "op"},
			),
			TickArraysActive: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "tick_arrays_active",
					Help:      "Populated tick arrays per pool",
				},
				[]string{"pool_id"},
			),
			TickArrayEvents: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "tick_array_events_total",
					Help:      "Tick arrays created and emptied",
				},
				[]string{"pool_id", "event"},
			),

			JitQuotes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "jit_quotes_total",
					Help:      "Ephemeral bands placed by side",
				},
				[]string{"pool_id", "side"},
			),
			JitFills: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "jit_fills_total",
					Help:      "Ephemeral bands that were at least partially filled",
				},
				[]string{"pool_id", "side"},
			),
			JitQuoteSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "jit_quote_size",
					Help:      "Buffer amount committed per ephemeral band",
					Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
				},
			),
			JitToxicity: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "jit_toxicity",
					Help:      "Toxicity EWMA per pool",
				},
				[]string{"pool_id"},
			),

			OracleWrites: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "oracle_writes_total",
					Help:      "Observations appended to oracle ring buffers",
				},
			),
			OracleDegradations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "clmm",
					Name:      "oracle_degradations_total",
					Help:      "Trades priced with a degraded oracle",
				},
				[]string{"pool_id", "reason"},
			),
		}
	})
	return clmmMetrics
}
