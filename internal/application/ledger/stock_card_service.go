package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockCardService operaciones sobre el agregado tarjeta de stock:
// obtener-o-crear idempotente y aplicación atómica de un movimiento.
type StockCardService struct {
	txRunner TxRunner
	group    singleflight.Group
	now      func() time.Time
}

// NewStockCardService construye el servicio.
func NewStockCardService(txRunner TxRunner) *StockCardService {
	return &StockCardService{txRunner: txRunner, now: time.Now}
}

// GetOrCreateStockCard devuelve la tarjeta de (facility, product) o la crea en cero.
// Las llamadas concurrentes del mismo proceso se agrupan; entre procesos decide el índice único.
func (s *StockCardService) GetOrCreateStockCard(ctx context.Context, facilityID, productID, userID string) (*entity.StockCard, error) {
	v, err, _ := s.group.Do(facilityID+"/"+productID, func() (interface{}, error) {
		var card *entity.StockCard
		err := s.txRunner.Run(ctx, func(cards repository.StockCardRepository, _ repository.LotRepository, _ repository.StockCardEntryRepository) error {
			var err error
			card, err = getOrCreateCard(ctx, cards, facilityID, productID, userID, s.now())
			return err
		})
		return card, err
	})
	if err != nil {
		return nil, err
	}
	// Cada caller recibe su propia copia.
	out := *v.(*entity.StockCard)
	return &out, nil
}

// getOrCreateCard inserta o lee la tarjeta dentro de la transacción en curso.
// Si otro escritor la creó primero, el insert reporta ErrDuplicate y se relee la fila ganadora.
func getOrCreateCard(ctx context.Context, cards repository.StockCardRepository, facilityID, productID, userID string, now time.Time) (*entity.StockCard, error) {
	card, err := cards.FindByFacilityAndProduct(ctx, facilityID, productID)
	if err != nil {
		return nil, err
	}
	if card != nil {
		return card, nil
	}

	card = entity.NewZeroedStockCard(facilityID, productID, userID, now)
	err = cards.Insert(ctx, card)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("%w: tarjeta %s/%s: %w", domain.ErrAggregateCreationFailed, facilityID, productID, err)
	}
	winner, err := cards.FindByFacilityAndProduct(ctx, facilityID, productID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: tarjeta %s/%s no visible tras conflicto", domain.ErrAggregateCreationFailed, facilityID, productID)
	}
	return winner, nil
}

// ApplyEntry persiste el movimiento y suma su cantidad a la tarjeta y, si aplica, al lote.
// Debe ejecutarse dentro de TxRunner.Run: las tres escrituras confirman juntas o ninguna.
// card y lotOnHand se actualizan en memoria con el estado persistido.
func (s *StockCardService) ApplyEntry(
	ctx context.Context,
	cards repository.StockCardRepository,
	lots repository.LotRepository,
	entries repository.StockCardEntryRepository,
	card *entity.StockCard,
	lotOnHand *entity.LotOnHand,
	entry *entity.StockCardEntry,
) error {
	if entry.IsPersisted() {
		return domain.ErrPersistedEntryImmutable
	}
	now := s.now()

	// Bloquea la fila de la tarjeta (SELECT FOR UPDATE)
	locked, err := cards.GetForUpdate(ctx, card.ID)
	if err != nil {
		return err
	}
	if locked == nil {
		return fmt.Errorf("tarjeta %s: %w", card.ID, domain.ErrNotFound)
	}

	var lockedLot *entity.LotOnHand
	if lotOnHand != nil {
		lockedLot, err = lots.GetLotOnHandForUpdate(ctx, lotOnHand.ID)
		if err != nil {
			return err
		}
		if lockedLot == nil || lockedLot.StockCardID != locked.ID {
			return fmt.Errorf("lote %s: %w", lotOnHand.ID, domain.ErrUnknownLot)
		}
	}

	entry.StockCardID = locked.ID
	if lockedLot != nil {
		entry.LotOnHandID = lockedLot.ID
	}
	if entry.Occurred.IsZero() {
		entry.Occurred = now
	}
	if err := entries.Insert(ctx, entry); err != nil {
		return err
	}

	expected := locked.Version
	locked.TotalQuantityOnHand += entry.Quantity
	locked.EffectiveDate = now
	locked.ModifiedBy = entry.ModifiedBy
	locked.ModifiedAt = now
	if err := cards.Update(ctx, locked, expected); err != nil {
		return err
	}

	if lockedLot != nil {
		expectedLot := lockedLot.Version
		lockedLot.QuantityOnHand += entry.Quantity
		lockedLot.EffectiveDate = now
		lockedLot.ModifiedBy = entry.ModifiedBy
		lockedLot.ModifiedAt = now
		if err := lots.UpdateLotOnHand(ctx, lockedLot, expectedLot); err != nil {
			return err
		}
		lotOnHand.QuantityOnHand = lockedLot.QuantityOnHand
		lotOnHand.Version = lockedLot.Version
		lotOnHand.EffectiveDate = lockedLot.EffectiveDate
	}

	card.TotalQuantityOnHand = locked.TotalQuantityOnHand
	card.Version = locked.Version
	card.EffectiveDate = locked.EffectiveDate
	card.ModifiedBy = locked.ModifiedBy
	card.ModifiedAt = locked.ModifiedAt
	return nil
}
