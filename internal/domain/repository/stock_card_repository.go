package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockCardRepository define el puerto de persistencia de tarjetas de stock.
// Usado dentro de transacciones para garantizar consistencia.
type StockCardRepository interface {
	FindByFacilityAndProduct(ctx context.Context, facilityID, productID string) (*entity.StockCard, error)
	FindByFacilityAndID(ctx context.Context, facilityID, id string) (*entity.StockCard, error)
	// GetForUpdate obtiene la tarjeta y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockCard, error)
	ListByFacility(ctx context.Context, facilityID string) ([]*entity.StockCard, error)
	ListAll(ctx context.Context) ([]*entity.StockCard, error)
	// Insert crea la tarjeta y le asigna ID. Devuelve domain.ErrDuplicate si ya existe
	// una tarjeta para (facility, product); el caller debe releerla.
	Insert(ctx context.Context, card *entity.StockCard) error
	// Update persiste total, fecha efectiva y auditoría solo si la versión almacenada es
	// expectedVersion (compare-and-swap). Si no, domain.ErrConcurrentUpdateConflict.
	Update(ctx context.Context, card *entity.StockCard, expectedVersion int64) error
}
