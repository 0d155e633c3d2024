package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconciledItems counts candidate items by policy and outcome
	// (inserted, updated, deleted, skipped, failed).
	ReconciledItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantry",
		Name:      "reconciled_items_total",
		Help:      "Candidate items processed by the reconciler.",
	}, []string{"policy", "outcome"})

	// DeductedIngredients counts ingredient outcomes of committed deductions.
	DeductedIngredients = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantry",
		Name:      "deducted_ingredients_total",
		Help:      "Ingredient outcomes of recipes marked as cooked.",
	}, []string{"status"})

	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pantry",
		Name:      "stock_version_conflicts_total",
		Help:      "Compare-and-swap stock writes rejected because the row changed.",
	})

	InferenceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantry",
		Name:      "inference_requests_total",
		Help:      "Calls to the inference service by operation and result.",
	}, []string{"operation", "result"})
)
