package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		cards repository.StockCardRepository,
		lots repository.LotRepository,
		entries repository.StockCardEntryRepository,
	) error) error
}

// JournalRecord movimientos aplicados en una transacción confirmada.
type JournalRecord struct {
	FacilityID string
	UserID     string
	AppliedAt  time.Time
	Entries    []*entity.StockCardEntry
}

// Journal registra los movimientos aplicados fuera del store principal (auditoría).
// Se invoca después del commit; un error aquí no revierte el lote.
type Journal interface {
	Record(ctx context.Context, rec JournalRecord) error
}

// NopJournal descarta los registros.
type NopJournal struct{}

func (NopJournal) Record(context.Context, JournalRecord) error { return nil }
