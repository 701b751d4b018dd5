package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// lotRef referencia de lote ya validada: por ID, por valor o ninguna.
type lotRef struct {
	lotID string
	lot   *entity.Lot
}

func (r lotRef) empty() bool { return r.lotID == "" && r.lot == nil }

// LotResolver ubica (o crea) las existencias por lote que afecta un movimiento.
// Check corre en la fase de validación y solo lee; Resolve corre dentro de la transacción de aplicación.
type LotResolver struct {
	lots repository.LotRepository
}

// NewLotResolver construye el resolvedor sobre el repositorio de lectura.
func NewLotResolver(lots repository.LotRepository) *LotResolver {
	return &LotResolver{lots: lots}
}

// Check valida la referencia de lote del evento contra el estado actual.
//   - Con LotID: debe existir el lote en la tarjeta (o planificarse en el mismo lote de eventos), si no ErrUnknownLot.
//   - Con lote descriptivo: se completa el producto y se validan los campos requeridos (ErrInvalidLot).
//
// planned contiene los lotes que eventos previos del mismo lote de eventos van a asociar a la tarjeta.
func (r *LotResolver) Check(ctx context.Context, ev ledger.StockEvent, productID string, card *entity.StockCard, planned map[string]bool) (lotRef, error) {
	if id := strings.TrimSpace(ev.LotID); id != "" {
		if planned[plannedKey(productID, id)] {
			return lotRef{lotID: id}, nil
		}
		if card == nil {
			return lotRef{}, domain.FieldError("lot_id", domain.ErrUnknownLot)
		}
		loh, err := r.lots.FindLotOnHand(ctx, card.ID, id)
		if err != nil {
			return lotRef{}, err
		}
		if loh == nil {
			return lotRef{}, domain.FieldError("lot_id", domain.ErrUnknownLot)
		}
		return lotRef{lotID: id}, nil
	}

	if ev.Lot == nil {
		return lotRef{}, nil
	}
	lot := *ev.Lot
	lot.ID = ""
	if err := ledger.ValidateLot(&lot, productID); err != nil {
		return lotRef{}, err
	}
	// Si el lote ya existe, eventos posteriores pueden referenciarlo por ID.
	existing, err := r.lots.FindLotByNaturalKey(ctx, lot.Key())
	if err != nil {
		return lotRef{}, err
	}
	if existing != nil && planned != nil {
		planned[plannedKey(productID, existing.ID)] = true
	}
	return lotRef{lot: &lot}, nil
}

func plannedKey(productID, lotID string) string {
	return productID + "/" + lotID
}

// Resolve devuelve las existencias por lote del movimiento, creándolas en cero si el lote llegó por valor.
// nil significa movimiento sin granularidad de lote.
func (r *LotResolver) Resolve(ctx context.Context, lots repository.LotRepository, ref lotRef, card *entity.StockCard, userID string, now time.Time) (*entity.LotOnHand, error) {
	switch {
	case ref.lotID != "":
		loh, err := lots.FindLotOnHand(ctx, card.ID, ref.lotID)
		if err != nil {
			return nil, err
		}
		if loh == nil {
			return nil, domain.FieldError("lot_id", domain.ErrUnknownLot)
		}
		return loh, nil
	case ref.lot != nil:
		return r.resolveByValue(ctx, lots, ref.lot, card, userID, now)
	}
	return nil, nil
}

func (r *LotResolver) resolveByValue(ctx context.Context, lots repository.LotRepository, want *entity.Lot, card *entity.StockCard, userID string, now time.Time) (*entity.LotOnHand, error) {
	key := want.Key()
	loh, err := lots.FindLotOnHandByLot(ctx, card.ID, key)
	if err != nil {
		return nil, err
	}
	if loh != nil {
		return loh, nil
	}

	lot, err := findOrInsertLot(ctx, lots, want, userID, now)
	if err != nil {
		return nil, err
	}

	loh = entity.NewZeroedLotOnHand(card.ID, lot, userID, now)
	err = lots.InsertLotOnHand(ctx, loh)
	if err == nil {
		return loh, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("%w: lote %s en tarjeta %s: %w", domain.ErrAggregateCreationFailed, lot.ID, card.ID, err)
	}
	winner, err := lots.FindLotOnHand(ctx, card.ID, lot.ID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: lote %s en tarjeta %s no visible tras conflicto", domain.ErrAggregateCreationFailed, lot.ID, card.ID)
	}
	return winner, nil
}

func findOrInsertLot(ctx context.Context, lots repository.LotRepository, want *entity.Lot, userID string, now time.Time) (*entity.Lot, error) {
	key := want.Key()
	lot, err := lots.FindLotByNaturalKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if lot != nil {
		return lot, nil
	}

	lot = &entity.Lot{
		ProductID:        key.ProductID,
		LotCode:          key.LotCode,
		ManufacturerName: key.ManufacturerName,
		ManufactureDate:  entity.DateOnly(want.ManufactureDate),
		ExpirationDate:   key.ExpirationDate,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	err = lots.InsertLot(ctx, lot)
	if err == nil {
		return lot, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("%w: lote %s: %w", domain.ErrAggregateCreationFailed, key.LotCode, err)
	}
	winner, err := lots.FindLotByNaturalKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: lote %s no visible tras conflicto", domain.ErrAggregateCreationFailed, key.LotCode)
	}
	return winner, nil
}
