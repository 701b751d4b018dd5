package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes y existencias por lote.
// Los Find* devuelven (nil, nil) si no hay registro.
type LotRepository interface {
	FindLotByNaturalKey(ctx context.Context, key entity.LotKey) (*entity.Lot, error)
	// InsertLot devuelve domain.ErrDuplicate si ya existe un lote con la misma clave natural.
	InsertLot(ctx context.Context, lot *entity.Lot) error

	FindLotOnHand(ctx context.Context, stockCardID, lotID string) (*entity.LotOnHand, error)
	FindLotOnHandByLot(ctx context.Context, stockCardID string, key entity.LotKey) (*entity.LotOnHand, error)
	GetLotOnHandForUpdate(ctx context.Context, id string) (*entity.LotOnHand, error)
	// InsertLotOnHand devuelve domain.ErrDuplicate si (tarjeta, lote) ya existe.
	InsertLotOnHand(ctx context.Context, lotOnHand *entity.LotOnHand) error
	// UpdateLotOnHand compare-and-swap sobre Version, igual que StockCardRepository.Update.
	UpdateLotOnHand(ctx context.Context, lotOnHand *entity.LotOnHand, expectedVersion int64) error
	ListLotsOnHand(ctx context.Context, stockCardID string) ([]*entity.LotOnHand, error)
}
