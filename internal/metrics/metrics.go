// Package metrics holds the Prometheus collectors for balance runs and price lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "balance"

var (
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Full balance runs by result (ok, failed, skipped).",
	}, []string{"result"})

	Wallets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallets_total",
		Help:      "Wallet evaluations by result (ok, error).",
	}, []string{"result"})

	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_lookups_total",
		Help:      "Resolved price lookups by the source that answered.",
	}, []string{"source"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of full balance runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	NetAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "net_assets_usd",
		Help:      "Net assets in USD after the last completed run.",
	})
)

const (
	SourceAssetList = "asset_list"
	SourceCoinCache = "coingecko_cache"
	SourceCoinGecko = "coingecko"
	SourceSearch    = "coingecko_search"
	SourcePeg       = "peg"
	SourceNone      = "unresolved"
)
