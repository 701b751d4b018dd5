package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestQuery_TruncaMovimientos(t *testing.T) {
	f := defaultFixture(t)
	f.apply(t, receipt(10), issue(2), issue(3))
	ctx := context.Background()

	cases := []struct {
		name    string
		entries int
		want    []int64
	}{
		{"negativo devuelve el último", -1, []int64{-3}},
		{"cero devuelve todos", 0, []int64{-3, -2, 10}},
		{"n menor que el total", 2, []int64{-3, -2}},
		{"n mayor que el total", 9, []int64{-3, -2, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.query.GetByFacilityAndProduct(ctx, testFacility, testProduct, appledger.ViewOptions{Entries: tc.entries})
			require.NoError(t, err)
			got := make([]int64, 0, len(resp.Entries))
			for _, e := range resp.Entries {
				got = append(got, e.Quantity)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, int64(5), resp.StockOnHand)
		})
	}
}

func TestQuery_LotesVaciosOcultosPorDefecto(t *testing.T) {
	f := defaultFixture(t)
	f.apply(t, withLot(receipt(4), "LLENO"), withLot(receipt(2), "VACIO"))
	f.apply(t, withLot(issue(2), "VACIO"))
	ctx := context.Background()

	resp, err := f.query.GetByFacilityAndProduct(ctx, testFacility, testProduct, appledger.ViewOptions{})
	require.NoError(t, err)
	require.Len(t, resp.LotsOnHand, 1)
	assert.Equal(t, "LLENO", resp.LotsOnHand[0].LotCode)
	require.NotNil(t, resp.LotsOnHand[0].ExpirationDate)

	resp, err = f.query.GetByID(ctx, testFacility, resp.ID, appledger.ViewOptions{IncludeEmptyLots: true})
	require.NoError(t, err)
	assert.Len(t, resp.LotsOnHand, 2)

	// La vista no modifica lo persistido.
	lots, err := f.store.Lots().ListLotsOnHand(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, lots, 2)
}

func TestQuery_NoEncontrado(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	_, err := f.query.GetByFacilityAndProduct(ctx, testFacility, testProduct, appledger.ViewOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.query.GetByFacilityAndProduct(ctx, "no-existe", testProduct, appledger.ViewOptions{})
	assert.ErrorIs(t, err, domain.ErrUnknownFacility)

	f.apply(t, receipt(1))
	card := f.card(t, testProduct)
	_, err = f.query.GetByID(ctx, testOtherFacility, card.ID, appledger.ViewOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la tarjeta pertenece a otra instalación")
}

func TestQuery_ListarYContar(t *testing.T) {
	f := defaultFixture(t)
	p2 := receipt(3)
	p2.ProductID = testProduct2
	f.apply(t, receipt(1), p2)
	ctx := context.Background()

	list, err := f.query.ListByFacility(ctx, testFacility, appledger.ViewOptions{Entries: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		assert.Len(t, item.Entries, 1)
	}

	n, err := f.query.CountByFacility(ctx, testFacility)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.query.CountByFacility(ctx, testOtherFacility)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestToStockCardResponse_NoModificaElAgregado(t *testing.T) {
	now := time.Now()
	card := &entity.StockCard{
		ID:                  "c1",
		TotalQuantityOnHand: 3,
		Entries: []*entity.StockCardEntry{
			{ID: "e2", Quantity: 1, Occurred: now},
			{ID: "e1", Quantity: 2, Occurred: now},
		},
		LotsOnHand: []*entity.LotOnHand{
			{ID: "l1", QuantityOnHand: 0},
			{ID: "l2", QuantityOnHand: 3},
		},
	}

	resp := appledger.ToStockCardResponse(card, ledger.LatestRecorded(), appledger.ViewOptions{Entries: 1})
	assert.Len(t, resp.Entries, 1)
	assert.Len(t, resp.LotsOnHand, 1)
	assert.Len(t, card.Entries, 2, "los movimientos del agregado no se truncan")
	assert.Len(t, card.LotsOnHand, 2, "los lotes vacíos siguen en el agregado")

	card.LotsOnHand = nil
	resp = appledger.ToStockCardResponse(card, ledger.LatestRecorded(), appledger.ViewOptions{})
	assert.Nil(t, resp.LotsOnHand, "sin lotes se mantiene nil")
}
