package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockCardRepo implementa repository.StockCardRepository en memoria.
type StockCardRepo struct{ sc scope }

var _ repository.StockCardRepository = (*StockCardRepo)(nil)

func cardKey(facilityID, productID string) string { return facilityID + "/" + productID }

func copyCard(c *entity.StockCard) *entity.StockCard {
	out := *c
	out.Entries = nil
	out.LotsOnHand = nil
	return &out
}

func (r *StockCardRepo) FindByFacilityAndProduct(_ context.Context, facilityID, productID string) (*entity.StockCard, error) {
	var out *entity.StockCard
	_ = r.sc.read(func(st *state) error {
		if id, ok := st.cardByKey[cardKey(facilityID, productID)]; ok {
			out = copyCard(st.cards[id])
		}
		return nil
	})
	return out, nil
}

func (r *StockCardRepo) FindByFacilityAndID(_ context.Context, facilityID, id string) (*entity.StockCard, error) {
	var out *entity.StockCard
	_ = r.sc.read(func(st *state) error {
		if c, ok := st.cards[id]; ok && c.FacilityID == facilityID {
			out = copyCard(c)
		}
		return nil
	})
	return out, nil
}

// GetForUpdate las transacciones ya están serializadas; basta con leer.
func (r *StockCardRepo) GetForUpdate(_ context.Context, id string) (*entity.StockCard, error) {
	var out *entity.StockCard
	_ = r.sc.read(func(st *state) error {
		if c, ok := st.cards[id]; ok {
			out = copyCard(c)
		}
		return nil
	})
	return out, nil
}

func (r *StockCardRepo) ListByFacility(_ context.Context, facilityID string) ([]*entity.StockCard, error) {
	out := []*entity.StockCard{}
	_ = r.sc.read(func(st *state) error {
		for _, c := range st.cards {
			if c.FacilityID == facilityID {
				out = append(out, copyCard(c))
			}
		}
		return nil
	})
	sortCards(out)
	return out, nil
}

func (r *StockCardRepo) ListAll(_ context.Context) ([]*entity.StockCard, error) {
	out := []*entity.StockCard{}
	_ = r.sc.read(func(st *state) error {
		for _, c := range st.cards {
			out = append(out, copyCard(c))
		}
		return nil
	})
	sortCards(out)
	return out, nil
}

func sortCards(cards []*entity.StockCard) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].ID < cards[j].ID
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}

func (r *StockCardRepo) Insert(_ context.Context, card *entity.StockCard) error {
	return r.sc.write(func(st *state) error {
		key := cardKey(card.FacilityID, card.ProductID)
		if _, ok := st.cardByKey[key]; ok {
			return domain.ErrDuplicate
		}
		if card.ID == "" {
			card.ID = uuid.New().String()
		}
		card.Version = 1
		st.cards[card.ID] = copyCard(card)
		st.cardByKey[key] = card.ID
		return nil
	})
}

func (r *StockCardRepo) Update(_ context.Context, card *entity.StockCard, expectedVersion int64) error {
	return r.sc.write(func(st *state) error {
		cur, ok := st.cards[card.ID]
		if !ok || cur.Version != expectedVersion {
			return domain.ErrConcurrentUpdateConflict
		}
		next := copyCard(cur)
		next.TotalQuantityOnHand = card.TotalQuantityOnHand
		next.EffectiveDate = card.EffectiveDate
		next.Notes = card.Notes
		next.ModifiedBy = card.ModifiedBy
		next.ModifiedAt = card.ModifiedAt
		next.Version = expectedVersion + 1
		st.cards[card.ID] = next
		card.Version = next.Version
		return nil
	})
}
