package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LotRepo implementa repository.LotRepository en memoria.
type LotRepo struct{ sc scope }

var _ repository.LotRepository = (*LotRepo)(nil)

func lotKey(k entity.LotKey) string {
	return k.ProductID + "|" + k.LotCode + "|" + k.ManufacturerName + "|" + k.ExpirationDate.Format("2006-01-02")
}

func lohKey(stockCardID, lotID string) string { return stockCardID + "/" + lotID }

// copyLotOnHand copia el registro con su lote; las propiedades se cargan aparte.
func copyLotOnHand(st *state, l *entity.LotOnHand) *entity.LotOnHand {
	out := *l
	out.KeyValues = nil
	out.Lot = nil
	if lot, ok := st.lots[l.LotID]; ok {
		c := *lot
		out.Lot = &c
	}
	return &out
}

func (r *LotRepo) FindLotByNaturalKey(_ context.Context, key entity.LotKey) (*entity.Lot, error) {
	var out *entity.Lot
	_ = r.sc.read(func(st *state) error {
		if id, ok := st.lotByKey[lotKey(key)]; ok {
			c := *st.lots[id]
			out = &c
		}
		return nil
	})
	return out, nil
}

func (r *LotRepo) InsertLot(_ context.Context, lot *entity.Lot) error {
	return r.sc.write(func(st *state) error {
		key := lotKey(lot.Key())
		if _, ok := st.lotByKey[key]; ok {
			return domain.ErrDuplicate
		}
		if lot.ID == "" {
			lot.ID = uuid.New().String()
		}
		c := *lot
		st.lots[c.ID] = &c
		st.lotByKey[key] = c.ID
		return nil
	})
}

func (r *LotRepo) FindLotOnHand(_ context.Context, stockCardID, lotID string) (*entity.LotOnHand, error) {
	var out *entity.LotOnHand
	_ = r.sc.read(func(st *state) error {
		if id, ok := st.lohByKey[lohKey(stockCardID, lotID)]; ok {
			out = copyLotOnHand(st, st.lotsOnHand[id])
		}
		return nil
	})
	return out, nil
}

func (r *LotRepo) FindLotOnHandByLot(_ context.Context, stockCardID string, key entity.LotKey) (*entity.LotOnHand, error) {
	var out *entity.LotOnHand
	_ = r.sc.read(func(st *state) error {
		lotID, ok := st.lotByKey[lotKey(key)]
		if !ok {
			return nil
		}
		if id, ok := st.lohByKey[lohKey(stockCardID, lotID)]; ok {
			out = copyLotOnHand(st, st.lotsOnHand[id])
		}
		return nil
	})
	return out, nil
}

func (r *LotRepo) GetLotOnHandForUpdate(_ context.Context, id string) (*entity.LotOnHand, error) {
	var out *entity.LotOnHand
	_ = r.sc.read(func(st *state) error {
		if l, ok := st.lotsOnHand[id]; ok {
			out = copyLotOnHand(st, l)
		}
		return nil
	})
	return out, nil
}

func (r *LotRepo) InsertLotOnHand(_ context.Context, loh *entity.LotOnHand) error {
	return r.sc.write(func(st *state) error {
		key := lohKey(loh.StockCardID, loh.LotID)
		if _, ok := st.lohByKey[key]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.lots[loh.LotID]; !ok {
			return domain.ErrNotFound
		}
		if loh.ID == "" {
			loh.ID = uuid.New().String()
		}
		loh.Version = 1
		c := *loh
		c.Lot = nil
		c.KeyValues = nil
		st.lotsOnHand[c.ID] = &c
		st.lohByKey[key] = c.ID
		return nil
	})
}

func (r *LotRepo) UpdateLotOnHand(_ context.Context, loh *entity.LotOnHand, expectedVersion int64) error {
	return r.sc.write(func(st *state) error {
		cur, ok := st.lotsOnHand[loh.ID]
		if !ok || cur.Version != expectedVersion {
			return domain.ErrConcurrentUpdateConflict
		}
		next := *cur
		next.QuantityOnHand = loh.QuantityOnHand
		next.EffectiveDate = loh.EffectiveDate
		next.ModifiedBy = loh.ModifiedBy
		next.ModifiedAt = loh.ModifiedAt
		next.Version = expectedVersion + 1
		st.lotsOnHand[loh.ID] = &next
		loh.Version = next.Version
		return nil
	})
}

func (r *LotRepo) ListLotsOnHand(_ context.Context, stockCardID string) ([]*entity.LotOnHand, error) {
	out := []*entity.LotOnHand{}
	_ = r.sc.read(func(st *state) error {
		for _, l := range st.lotsOnHand {
			if l.StockCardID == stockCardID {
				out = append(out, copyLotOnHand(st, l))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
