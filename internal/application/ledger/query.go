package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ViewOptions filtros de visualización. Nunca modifican los agregados persistidos.
type ViewOptions struct {
	Entries          int  // < 0: solo el último movimiento; 0: todos; n: los n más recientes
	IncludeEmptyLots bool // por defecto se ocultan los lotes en cero
}

// StockCardQueryUseCase lectura de tarjetas de stock para la capa HTTP.
type StockCardQueryUseCase struct {
	facilityRepo repository.FacilityRepository
	cardRepo     repository.StockCardRepository
	lotRepo      repository.LotRepository
	entryRepo    repository.StockCardEntryRepository
	reducer      ledger.Reducer
}

// NewStockCardQueryUseCase construye el caso de uso. reducer nil usa LatestRecorded.
func NewStockCardQueryUseCase(
	facilityRepo repository.FacilityRepository,
	cardRepo repository.StockCardRepository,
	lotRepo repository.LotRepository,
	entryRepo repository.StockCardEntryRepository,
	reducer ledger.Reducer,
) *StockCardQueryUseCase {
	if reducer == nil {
		reducer = ledger.LatestRecorded()
	}
	return &StockCardQueryUseCase{
		facilityRepo: facilityRepo,
		cardRepo:     cardRepo,
		lotRepo:      lotRepo,
		entryRepo:    entryRepo,
		reducer:      reducer,
	}
}

// GetByFacilityAndProduct tarjeta de (facility, product). ErrNotFound si no hay movimientos aún.
func (uc *StockCardQueryUseCase) GetByFacilityAndProduct(ctx context.Context, facilityID, productID string, opts ViewOptions) (*dto.StockCardResponse, error) {
	if err := uc.checkFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	card, err := uc.cardRepo.FindByFacilityAndProduct(ctx, facilityID, productID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, domain.ErrNotFound
	}
	return uc.load(ctx, card, opts)
}

// GetByID tarjeta por ID dentro de la instalación.
func (uc *StockCardQueryUseCase) GetByID(ctx context.Context, facilityID, stockCardID string, opts ViewOptions) (*dto.StockCardResponse, error) {
	if err := uc.checkFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	card, err := uc.cardRepo.FindByFacilityAndID(ctx, facilityID, stockCardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, domain.ErrNotFound
	}
	return uc.load(ctx, card, opts)
}

// ListByFacility todas las tarjetas de la instalación.
func (uc *StockCardQueryUseCase) ListByFacility(ctx context.Context, facilityID string, opts ViewOptions) (*dto.StockCardListResponse, error) {
	if err := uc.checkFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	cards, err := uc.cardRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	out := &dto.StockCardListResponse{Items: make([]dto.StockCardResponse, 0, len(cards)), Count: len(cards)}
	for _, c := range cards {
		resp, err := uc.load(ctx, c, opts)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

// CountByFacility cantidad de tarjetas de la instalación.
func (uc *StockCardQueryUseCase) CountByFacility(ctx context.Context, facilityID string) (int, error) {
	if err := uc.checkFacility(ctx, facilityID); err != nil {
		return 0, err
	}
	cards, err := uc.cardRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}

func (uc *StockCardQueryUseCase) checkFacility(ctx context.Context, facilityID string) error {
	f, err := uc.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return err
	}
	if f == nil {
		return domain.ErrUnknownFacility
	}
	return nil
}

// load arma el agregado completo: movimientos (más reciente primero) y lotes con sus propiedades vigentes.
func (uc *StockCardQueryUseCase) load(ctx context.Context, card *entity.StockCard, opts ViewOptions) (*dto.StockCardResponse, error) {
	limit := 0
	if opts.Entries < 0 {
		limit = 1
	} else if opts.Entries > 0 {
		limit = opts.Entries
	}
	entries, err := uc.entryRepo.ListByStockCard(ctx, card.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("listando movimientos: %w", err)
	}
	lots, err := uc.lotRepo.ListLotsOnHand(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("listando lotes: %w", err)
	}
	for _, l := range lots {
		kv, err := uc.entryRepo.ListKeyValuesByLotOnHand(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("historial del lote %s: %w", l.ID, err)
		}
		l.KeyValues = kv
	}
	full := *card
	full.Entries = entries
	full.LotsOnHand = lots
	return ToStockCardResponse(&full, uc.reducer, opts), nil
}

// ToStockCardResponse aplica los filtros de visualización sobre copias; card no se modifica.
func ToStockCardResponse(card *entity.StockCard, reducer ledger.Reducer, opts ViewOptions) *dto.StockCardResponse {
	out := &dto.StockCardResponse{
		ID:            card.ID,
		FacilityID:    card.FacilityID,
		ProductID:     card.ProductID,
		StockOnHand:   card.TotalQuantityOnHand,
		EffectiveDate: card.EffectiveDate,
		Notes:         card.Notes,
	}

	entries := card.Entries
	switch {
	case opts.Entries < 0 && len(entries) > 1:
		entries = entries[:1]
	case opts.Entries > 0 && opts.Entries < len(entries):
		entries = entries[:opts.Entries]
	}
	out.Entries = make([]dto.StockCardEntryDTO, 0, len(entries))
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryDTO(e))
	}

	if card.LotsOnHand != nil {
		out.LotsOnHand = make([]dto.LotOnHandResponse, 0, len(card.LotsOnHand))
		for _, l := range card.LotsOnHand {
			if l.IsEmpty() && !opts.IncludeEmptyLots {
				continue
			}
			out.LotsOnHand = append(out.LotsOnHand, toLotDTO(l, reducer))
		}
	}
	return out
}

func toEntryDTO(e *entity.StockCardEntry) dto.StockCardEntryDTO {
	d := dto.StockCardEntryDTO{
		ID:              e.ID,
		Type:            string(e.Type),
		Quantity:        e.Quantity,
		ReferenceNumber: e.ReferenceNumber,
		LotOnHandID:     e.LotOnHandID,
		Notes:           e.Notes,
		OccurredDate:    e.Occurred,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
	}
	if e.AdjustmentReason != nil {
		d.Reason = e.AdjustmentReason.Name
	}
	if len(e.KeyValues) > 0 {
		d.ExtraData = make(map[string]string, len(e.KeyValues))
		for _, kv := range e.KeyValues {
			d.ExtraData[kv.Key] = kv.Value
		}
	}
	return d
}

func toLotDTO(l *entity.LotOnHand, reducer ledger.Reducer) dto.LotOnHandResponse {
	d := dto.LotOnHandResponse{
		ID:             l.ID,
		LotID:          l.LotID,
		QuantityOnHand: l.QuantityOnHand,
		EffectiveDate:  l.EffectiveDate,
		ExtraData:      reducer.Reduce(l.KeyValues),
	}
	if l.Lot != nil {
		d.LotCode = l.Lot.LotCode
		d.ManufacturerName = l.Lot.ManufacturerName
		if !l.Lot.ExpirationDate.IsZero() {
			exp := l.Lot.ExpirationDate
			d.ExpirationDate = &exp
		}
		if !l.Lot.ManufactureDate.IsZero() {
			mfg := l.Lot.ManufactureDate
			d.ManufactureDate = &mfg
		}
	}
	return d
}
