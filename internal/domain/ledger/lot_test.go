package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestValidateLot_CompletaProducto(t *testing.T) {
	lot := &entity.Lot{LotCode: " L-01 ", ManufacturerName: "Acme", ExpirationDate: t0}
	require.NoError(t, ledger.ValidateLot(lot, "p1"))
	assert.Equal(t, "p1", lot.ProductID)
	assert.Equal(t, "L-01", lot.LotCode)
}

func TestValidateLot_CamposRequeridos(t *testing.T) {
	cases := []struct {
		name  string
		lot   *entity.Lot
		field string
	}{
		{"sin lote", nil, "lot"},
		{"sin código", &entity.Lot{ManufacturerName: "Acme", ExpirationDate: t0}, "lot.lot_code"},
		{"sin fabricante", &entity.Lot{LotCode: "L-01", ManufacturerName: "  ", ExpirationDate: t0}, "lot.manufacturer_name"},
		{"sin vencimiento", &entity.Lot{LotCode: "L-01", ManufacturerName: "Acme"}, "lot.expiration_date"},
		{"otro producto", &entity.Lot{ProductID: "p2", LotCode: "L-01", ManufacturerName: "Acme", ExpirationDate: t0}, "lot.product_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateLot(tc.lot, "p1")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidLot)
			var ee *domain.EventError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tc.field, ee.Field)
		})
	}
}

func TestLotKey_VencimientoPorDia(t *testing.T) {
	a := &entity.Lot{ProductID: "p1", LotCode: "L-01", ManufacturerName: "Acme", ExpirationDate: t0}
	b := &entity.Lot{ProductID: "p1", LotCode: "L-01 ", ManufacturerName: "Acme", ExpirationDate: t0.Add(5 * time.Hour)}
	assert.Equal(t, a.Key(), b.Key())
}
