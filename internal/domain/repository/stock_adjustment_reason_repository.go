package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockAdjustmentReasonRepository puerto de consulta de motivos de ajuste.
type StockAdjustmentReasonRepository interface {
	GetByName(ctx context.Context, name string) (*entity.StockAdjustmentReason, error)
}
