package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger/internal/application/ledger"
)

func newReconcile(f *fixture) *appledger.ReconcileUseCase {
	return appledger.NewReconcileUseCase(f.store, f.store.StockCards(), f.store.Lots(), f.store.Entries(), zerolog.Nop())
}

func TestReconcile_SinDiferencias(t *testing.T) {
	f := defaultFixture(t)
	f.apply(t, withLot(receipt(5), "R-1"), issue(2))

	report, err := newReconcile(f).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CardsChecked)
	assert.Equal(t, 1, report.LotsChecked)
	assert.Empty(t, report.Discrepancies)
}

func TestReconcile_DetectaYReparaDiferencias(t *testing.T) {
	f := defaultFixture(t)
	f.apply(t, withLot(receipt(5), "R-2"), receipt(1))
	ctx := context.Background()

	// Corrompe el total guardado de la tarjeta y del lote.
	card := f.card(t, testProduct)
	card.TotalQuantityOnHand = 99
	require.NoError(t, f.store.StockCards().Update(ctx, card, card.Version))
	lots, err := f.store.Lots().ListLotsOnHand(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	lots[0].QuantityOnHand = -7
	require.NoError(t, f.store.Lots().UpdateLotOnHand(ctx, lots[0], lots[0].Version))

	uc := newReconcile(f)
	report, err := uc.Run(ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 2)
	assert.Equal(t, appledger.AggregateStockCard, report.Discrepancies[0].Aggregate)
	assert.Equal(t, int64(99), report.Discrepancies[0].Stored)
	assert.Equal(t, int64(6), report.Discrepancies[0].Ledger)
	assert.False(t, report.Discrepancies[0].Repaired)
	assert.Equal(t, appledger.AggregateLotOnHand, report.Discrepancies[1].Aggregate)
	assert.Equal(t, int64(99), f.total(t, testProduct), "sin repair no se modifica nada")

	report, err = uc.Run(ctx, true)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 2)
	assert.True(t, report.Discrepancies[0].Repaired)
	assert.Equal(t, int64(6), f.total(t, testProduct))

	report, err = uc.Run(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}

func TestReconcileReport_JSONEnSnakeCase(t *testing.T) {
	report := appledger.ReconcileReport{
		StartedAt:    time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		CardsChecked: 2,
		LotsChecked:  3,
		Discrepancies: []appledger.Discrepancy{
			{Aggregate: appledger.AggregateStockCard, ID: "card-1", Stored: 5, Ledger: 4, Repaired: true},
		},
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"started_at": "2024-05-02T08:00:00Z",
		"cards_checked": 2,
		"lots_checked": 3,
		"discrepancies": [
			{"aggregate": "stock_card", "id": "card-1", "stored": 5, "ledger": 4, "repaired": true}
		]
	}`, string(raw))
}
