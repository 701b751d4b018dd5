package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockAdjustmentReasonRepository = (*StockAdjustmentReasonRepo)(nil)

// StockAdjustmentReasonRepo motivos de ajuste sobre PostgreSQL.
type StockAdjustmentReasonRepo struct {
	q Querier
}

// NewStockAdjustmentReasonRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentReasonRepository(q Querier) *StockAdjustmentReasonRepo {
	return &StockAdjustmentReasonRepo{q: q}
}

// GetByName busca el motivo por nombre sin distinguir mayúsculas.
func (r *StockAdjustmentReasonRepo) GetByName(ctx context.Context, name string) (*entity.StockAdjustmentReason, error) {
	query := `
		SELECT id, name, description, additive
		FROM stock_adjustment_reasons WHERE lower(name) = lower($1)`
	var reason entity.StockAdjustmentReason
	err := r.q.QueryRow(ctx, query, name).Scan(&reason.ID, &reason.Name, &reason.Description, &reason.Additive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment reason: %w", err)
	}
	return &reason, nil
}
