package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_batches_total",
		Help: "Lotes de eventos procesados por resultado.",
	}, []string{"result"})

	entriesAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_entries_applied_total",
		Help: "Movimientos aplicados por tipo.",
	}, []string{"type"})

	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_ledger_apply_duration_seconds",
		Help:    "Duración de la aplicación de un lote.",
		Buckets: prometheus.DefBuckets,
	})

	conflictRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_ledger_conflict_retries_total",
		Help: "Reintentos por conflicto de actualización concurrente.",
	})

	reconcileDiscrepanciesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_reconcile_discrepancies_total",
		Help: "Diferencias encontradas al conciliar totales con el ledger.",
	}, []string{"aggregate"})
)

// Resultados posibles de un lote.
const (
	resultApplied  = "applied"
	resultEmpty    = "empty"
	resultRejected = "rejected"
	resultConflict = "conflict"
	resultFailed   = "failed"
)
