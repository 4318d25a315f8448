// Package metrics exposes Prometheus counters for store and import activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreList = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_list_total",
			Help: "Item list queries",
		},
		[]string{"result"},
	)
	StoreAdd = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_add_total",
			Help: "Item inserts",
		},
		[]string{"result"},
	)
	StoreUpdate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_update_total",
			Help: "Item updates",
		},
		[]string{"result"},
	)
	StoreToggle = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_toggle_total",
			Help: "Bought toggles",
		},
		[]string{"result"},
	)
	StoreDelete = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_delete_total",
			Help: "Item deletes",
		},
		[]string{"result"},
	)
	StoreImport = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_store_import_total",
			Help: "Import transactions",
		},
		[]string{"result"},
	)

	ImportedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_imported_items_total",
			Help: "Records seen by the importer, by outcome",
		},
		[]string{"outcome"},
	)
	FeedFetch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerylist_feed_fetch_total",
			Help: "Remote feed fetches",
		},
		[]string{"result"},
	)
)

// Observe increments c with result "ok" or "error" depending on err.
func Observe(c *prometheus.CounterVec, err error) {
	if err != nil {
		c.WithLabelValues("error").Inc()
		return
	}
	c.WithLabelValues("ok").Inc()
}
