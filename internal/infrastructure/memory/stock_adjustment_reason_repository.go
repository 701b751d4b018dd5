package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockAdjustmentReasonRepo implementa repository.StockAdjustmentReasonRepository en memoria.
type StockAdjustmentReasonRepo struct{ sc scope }

var _ repository.StockAdjustmentReasonRepository = (*StockAdjustmentReasonRepo)(nil)

// GetByName busca sin distinguir mayúsculas.
func (r *StockAdjustmentReasonRepo) GetByName(_ context.Context, name string) (*entity.StockAdjustmentReason, error) {
	var out *entity.StockAdjustmentReason
	_ = r.sc.read(func(st *state) error {
		if reason, ok := st.reasons[strings.ToLower(strings.TrimSpace(name))]; ok {
			c := *reason
			out = &c
		}
		return nil
	})
	return out, nil
}
