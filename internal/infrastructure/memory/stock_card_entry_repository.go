package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockCardEntryRepo implementa repository.StockCardEntryRepository en memoria (append-only).
type StockCardEntryRepo struct{ sc scope }

var _ repository.StockCardEntryRepository = (*StockCardEntryRepo)(nil)

func copyEntry(e *entity.StockCardEntry) *entity.StockCardEntry {
	out := *e
	if e.KeyValues != nil {
		out.KeyValues = append([]entity.KeyValue(nil), e.KeyValues...)
	}
	if e.AdjustmentReason != nil {
		r := *e.AdjustmentReason
		out.AdjustmentReason = &r
	}
	return &out
}

func (r *StockCardEntryRepo) Insert(_ context.Context, entry *entity.StockCardEntry) error {
	if entry.IsPersisted() {
		return domain.ErrPersistedEntryImmutable
	}
	return r.sc.write(func(st *state) error {
		if _, ok := st.cards[entry.StockCardID]; !ok {
			return domain.ErrNotFound
		}
		entry.ID = uuid.New().String()
		st.entries = append(st.entries, copyEntry(entry))
		return nil
	})
}

func (r *StockCardEntryRepo) ListByStockCard(_ context.Context, stockCardID string, limit int) ([]*entity.StockCardEntry, error) {
	out := []*entity.StockCardEntry{}
	_ = r.sc.read(func(st *state) error {
		for i := len(st.entries) - 1; i >= 0; i-- {
			if st.entries[i].StockCardID != stockCardID {
				continue
			}
			out = append(out, copyEntry(st.entries[i]))
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, nil
}

func (r *StockCardEntryRepo) ListKeyValuesByLotOnHand(_ context.Context, lotOnHandID string) ([]entity.KeyValue, error) {
	var out []entity.KeyValue
	_ = r.sc.read(func(st *state) error {
		for _, e := range st.entries {
			if e.LotOnHandID == lotOnHandID {
				out = append(out, e.KeyValues...)
			}
		}
		return nil
	})
	return out, nil
}

func (r *StockCardEntryRepo) SumByStockCard(_ context.Context, stockCardID string) (int64, error) {
	var sum int64
	_ = r.sc.read(func(st *state) error {
		for _, e := range st.entries {
			if e.StockCardID == stockCardID {
				sum += e.Quantity
			}
		}
		return nil
	})
	return sum, nil
}

func (r *StockCardEntryRepo) SumByLotOnHand(_ context.Context, lotOnHandID string) (int64, error) {
	var sum int64
	_ = r.sc.read(func(st *state) error {
		for _, e := range st.entries {
			if e.LotOnHandID == lotOnHandID {
				sum += e.Quantity
			}
		}
		return nil
	})
	return sum, nil
}
