package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProductsImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_products_imported_total",
			Help: "Products inserted for the first time",
		},
	)
	ProductsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_products_updated_total",
			Help: "Existing products refreshed from a feed",
		},
	)
	ProductErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_product_errors_total",
			Help: "Records dropped by normalization or storage",
		},
	)
	RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rows_skipped_total",
			Help: "Malformed feed rows dropped before normalization",
		},
	)
	BatchesCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_batches_committed_total",
			Help: "Upsert batches committed",
		},
	)
	BatchesRolledBack = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_batches_rolled_back_total",
			Help: "Upsert batches rolled back after a fatal error",
		},
	)
	DiscountSuspect = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_discount_suspect_total",
			Help: "Records whose old price does not exceed the current price",
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(
		ProductsImported,
		ProductsUpdated,
		ProductErrors,
		RowsSkipped,
		BatchesCommitted,
		BatchesRolledBack,
		DiscountSuspect,
	)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
