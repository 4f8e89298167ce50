package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	productsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_products_resolved_total",
			Help: "Products looked up by the component image resolver",
		},
		[]string{"result"},
	)

	compositesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_composites_built_total",
			Help: "Composite images built, by backend and result",
		},
		[]string{"backend", "result"},
	)

	productsUpdated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_products_updated_total",
			Help: "Product image write-backs, by result",
		},
		[]string{"result"},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundle_batch_duration_seconds",
			Help:    "Wall time of one orchestrator batch run",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	resultOK       = "ok"
	resultError    = "error"
	resultNotFound = "not_found"
)
