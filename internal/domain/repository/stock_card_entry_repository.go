package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockCardEntryRepository puerto del ledger append-only. No hay Update ni Delete.
type StockCardEntryRepository interface {
	// Insert persiste el movimiento con sus propiedades y le asigna ID.
	// Devuelve domain.ErrPersistedEntryImmutable si el movimiento ya tiene ID.
	Insert(ctx context.Context, entry *entity.StockCardEntry) error
	// ListByStockCard lista movimientos del más reciente al más antiguo. limit <= 0 = todos.
	ListByStockCard(ctx context.Context, stockCardID string, limit int) ([]*entity.StockCardEntry, error)
	// ListKeyValuesByLotOnHand historial de propiedades de los movimientos de un lote, en orden de registro.
	ListKeyValuesByLotOnHand(ctx context.Context, lotOnHandID string) ([]entity.KeyValue, error)
	SumByStockCard(ctx context.Context, stockCardID string) (int64, error)
	SumByLotOnHand(ctx context.Context, lotOnHandID string) (int64, error)
}
