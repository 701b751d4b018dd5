package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func TestStore_RollbackDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("falla")

	err := s.Run(ctx, func(cards repository.StockCardRepository, _ repository.LotRepository, _ repository.StockCardEntryRepository) error {
		card := entity.NewZeroedStockCard("f1", "p1", "u1", now)
		require.NoError(t, cards.Insert(ctx, card))
		found, err := cards.FindByFacilityAndProduct(ctx, "f1", "p1")
		require.NoError(t, err)
		require.NotNil(t, found, "la transacción ve sus propias escrituras")
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := s.StockCards().FindByFacilityAndProduct(ctx, "f1", "p1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStockCardRepo_UnicidadYCAS(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	repo := s.StockCards()

	card := entity.NewZeroedStockCard("f1", "p1", "u1", now)
	require.NoError(t, repo.Insert(ctx, card))
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, int64(1), card.Version)

	dup := entity.NewZeroedStockCard("f1", "p1", "u2", now)
	assert.ErrorIs(t, repo.Insert(ctx, dup), domain.ErrDuplicate)

	card.TotalQuantityOnHand = 5
	require.NoError(t, repo.Update(ctx, card, 1))
	assert.Equal(t, int64(2), card.Version)

	stale := *card
	stale.TotalQuantityOnHand = 50
	assert.ErrorIs(t, repo.Update(ctx, &stale, 1), domain.ErrConcurrentUpdateConflict)

	got, err := repo.FindByFacilityAndProduct(ctx, "f1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.TotalQuantityOnHand)
}

func TestLotRepo_ClaveNatural(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	repo := s.Lots()

	lot := &entity.Lot{ProductID: "p1", LotCode: "L1", ManufacturerName: "Acme", ExpirationDate: now}
	require.NoError(t, repo.InsertLot(ctx, lot))

	same := &entity.Lot{ProductID: "p1", LotCode: "L1", ManufacturerName: "Acme", ExpirationDate: now.Add(3 * time.Hour)}
	assert.ErrorIs(t, repo.InsertLot(ctx, same), domain.ErrDuplicate, "el vencimiento se compara por día")

	found, err := repo.FindLotByNaturalKey(ctx, same.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, lot.ID, found.ID)
}

func TestEntryRepo_SoloUnaEscritura(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	card := entity.NewZeroedStockCard("f1", "p1", "u1", now)
	require.NoError(t, s.StockCards().Insert(ctx, card))

	entry := &entity.StockCardEntry{StockCardID: card.ID, Type: entity.EntryTypeCredit, Quantity: 4}
	require.NoError(t, s.Entries().Insert(ctx, entry))
	assert.True(t, entry.IsPersisted())
	assert.ErrorIs(t, s.Entries().Insert(ctx, entry), domain.ErrPersistedEntryImmutable)

	clone := entry.Clone()
	require.NoError(t, s.Entries().Insert(ctx, clone))
	assert.NotEqual(t, entry.ID, clone.ID)

	sum, err := s.Entries().SumByStockCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), sum)
}
