package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StockUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_updates_total",
		Help: "Total number of stock update attempts by result",
	}, []string{"result"})

	StockUpdateConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_update_conflicts_total",
		Help: "Total number of optimistic version conflicts during stock updates",
	})

	StockUpdateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_update_latency_seconds",
		Help:    "Latency of the full stock update sequence",
		Buckets: prometheus.DefBuckets,
	})

	SecondaryEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secondary_effect_failures_total",
		Help: "Ledger appends and alert writes that failed after a committed stock update",
	}, []string{"effect"})

	AlertsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alerts_created_total",
		Help: "Total number of stock alerts created by type",
	}, []string{"alert_type"})

	MovementsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_movements_appended_total",
		Help: "Total number of stock movements appended to the ledger",
	})

	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Inventory listings served from the Redis snapshot cache",
	})

	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Inventory listings that fell through to the database",
	})

	SnapshotsPushedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshots_pushed_total",
		Help: "Full-state snapshots pushed to change subscribers",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
