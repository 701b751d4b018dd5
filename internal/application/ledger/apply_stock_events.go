package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Modos de aplicación.
const (
	ModeBatch    = "batch"     // todo el lote en una transacción
	ModePerEntry = "per_entry" // una transacción por movimiento, tras validar el lote completo
)

// Options parámetros del motor.
type Options struct {
	MaxRetries   int           // reintentos ante conflicto concurrente
	RetryBackoff time.Duration // espera inicial; se duplica en cada intento
	Mode         string
}

// DefaultOptions valores por defecto.
func DefaultOptions() Options {
	return Options{MaxRetries: 3, RetryBackoff: 20 * time.Millisecond, Mode: ModeBatch}
}

// ApplyResult resultado de un lote aplicado.
type ApplyResult struct {
	Applied  int
	EntryIDs []string
}

// ApplyStockEventsUseCase valida un lote de eventos de stock y lo aplica al ledger.
// Primero construye todos los movimientos (solo lecturas); si alguno falla el lote se aborta sin escrituras.
// Luego aplica en orden: obtener-o-crear tarjeta, resolver lote, insertar movimiento y actualizar totales.
type ApplyStockEventsUseCase struct {
	txRunner     TxRunner
	facilityRepo repository.FacilityRepository
	productRepo  repository.ProductRepository
	reasonRepo   repository.StockAdjustmentReasonRepository
	cardRepo     repository.StockCardRepository
	cards        *StockCardService
	lots         *LotResolver
	journal      Journal
	log          zerolog.Logger
	opts         Options
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewApplyStockEventsUseCase construye el caso de uso. journal puede ser nil.
func NewApplyStockEventsUseCase(
	txRunner TxRunner,
	facilityRepo repository.FacilityRepository,
	productRepo repository.ProductRepository,
	reasonRepo repository.StockAdjustmentReasonRepository,
	cardRepo repository.StockCardRepository,
	lotRepo repository.LotRepository,
	journal Journal,
	log zerolog.Logger,
	opts Options,
) *ApplyStockEventsUseCase {
	if journal == nil {
		journal = NopJournal{}
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Mode != ModePerEntry {
		opts.Mode = ModeBatch
	}
	return &ApplyStockEventsUseCase{
		txRunner:     txRunner,
		facilityRepo: facilityRepo,
		productRepo:  productRepo,
		reasonRepo:   reasonRepo,
		cardRepo:     cardRepo,
		cards:        NewStockCardService(txRunner),
		lots:         NewLotResolver(lotRepo),
		journal:      journal,
		log:          log,
		opts:         opts,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// StockCards servicio de tarjetas que usa el motor.
func (uc *ApplyStockEventsUseCase) StockCards() *StockCardService {
	return uc.cards
}

// pendingEntry movimiento construido en la fase de validación, listo para aplicarse.
type pendingEntry struct {
	index     int
	productID string
	lot       lotRef
	entry     *entity.StockCardEntry
}

// Apply valida y aplica los eventos del lote para la instalación, en nombre de userID.
// Un lote vacío no hace nada. Los errores de entrada llevan la posición y el campo del evento.
func (uc *ApplyStockEventsUseCase) Apply(ctx context.Context, facilityID string, events []ledger.StockEvent, userID string) (*ApplyResult, error) {
	start := uc.now()
	log := uc.log.With().Str("facility_id", facilityID).Str("user_id", userID).Int("events", len(events)).Logger()

	if len(events) == 0 {
		batchesTotal.WithLabelValues(resultEmpty).Inc()
		log.Debug().Msg("lote vacío, nada que aplicar")
		return &ApplyResult{EntryIDs: []string{}}, nil
	}

	facility, err := uc.lookupFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.build(ctx, facility.ID, events, userID)
	if err != nil {
		batchesTotal.WithLabelValues(resultRejected).Inc()
		log.Info().Err(err).Msg("lote rechazado")
		return nil, err
	}

	var res *ApplyResult
	if uc.opts.Mode == ModePerEntry {
		res, err = uc.applyPerEntry(ctx, facility.ID, pending, userID, log)
	} else {
		res, err = uc.applyBatch(ctx, facility.ID, pending, userID, log)
	}
	applyDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		batchesTotal.WithLabelValues(resultApplied).Inc()
		log.Info().Int("applied", res.Applied).Msg("lote aplicado")
	case domain.IsRetryable(err):
		batchesTotal.WithLabelValues(resultConflict).Inc()
		log.Warn().Err(err).Msg("lote no aplicado por conflicto concurrente")
	case domain.IsInputError(err):
		batchesTotal.WithLabelValues(resultRejected).Inc()
		log.Info().Err(err).Msg("lote rechazado al aplicar")
	default:
		batchesTotal.WithLabelValues(resultFailed).Inc()
		log.Error().Err(err).Msg("error aplicando lote")
	}
	return res, err
}

// lookupFacility resuelve la instalación del lote; una instalación inexistente es ErrUnknownFacility.
func (uc *ApplyStockEventsUseCase) lookupFacility(ctx context.Context, facilityID string) (*entity.Facility, error) {
	facility, err := uc.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		batchesTotal.WithLabelValues(resultFailed).Inc()
		return nil, fmt.Errorf("consultando instalación: %w", err)
	}
	if facility == nil {
		batchesTotal.WithLabelValues(resultRejected).Inc()
		return nil, domain.FieldError("facility_id", domain.ErrUnknownFacility)
	}
	return facility, nil
}

// build valida cada evento en orden y construye su movimiento sin escribir nada.
func (uc *ApplyStockEventsUseCase) build(ctx context.Context, facilityID string, events []ledger.StockEvent, userID string) ([]pendingEntry, error) {
	now := uc.now()
	planned := make(map[string]bool)
	out := make([]pendingEntry, 0, len(events))

	for i, ev := range events {
		kind, err := ledger.Classify(ev)
		if err != nil {
			return nil, domain.AtEvent(i, err)
		}

		product, err := uc.resolveProduct(ctx, ev)
		if err != nil {
			return nil, domain.AtEvent(i, err)
		}

		var reason *entity.StockAdjustmentReason
		if kind == ledger.KindAdjustment {
			reason, err = uc.reasonRepo.GetByName(ctx, strings.TrimSpace(ev.ReasonName))
			if err != nil {
				return nil, domain.AtEvent(i, fmt.Errorf("consultando motivo: %w", err))
			}
			if reason == nil {
				return nil, domain.AtEvent(i, domain.FieldError("reason_name", domain.ErrUnknownReason))
			}
		}

		// La tarjeta puede no existir todavía: se crea al aplicar.
		card, err := uc.cardRepo.FindByFacilityAndProduct(ctx, facilityID, product.ID)
		if err != nil {
			return nil, domain.AtEvent(i, fmt.Errorf("consultando tarjeta: %w", err))
		}

		ref, err := uc.lots.Check(ctx, ev, product.ID, card, planned)
		if err != nil {
			return nil, domain.AtEvent(i, err)
		}

		occurred := ev.Occurred
		if occurred.IsZero() {
			occurred = now
		}
		// Las propiedades conservan el orden de envío dentro del lote.
		recordedAt := now.Add(time.Duration(i) * time.Microsecond)
		entry := &entity.StockCardEntry{
			Type:             kind.EntryType(),
			Quantity:         ledger.SignedQuantity(ev, reason),
			ReferenceNumber:  strings.TrimSpace(ev.ReferenceNumber),
			AdjustmentReason: reason,
			Notes:            ev.Notes,
			KeyValues:        ledger.KeyValuesFrom(ev.CustomProps, recordedAt),
			Occurred:         occurred,
			CreatedBy:        userID,
			CreatedAt:        now,
			ModifiedBy:       userID,
			ModifiedAt:       now,
		}
		out = append(out, pendingEntry{index: i, productID: product.ID, lot: ref, entry: entry})
	}
	return out, nil
}

func (uc *ApplyStockEventsUseCase) resolveProduct(ctx context.Context, ev ledger.StockEvent) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)
	if id := strings.TrimSpace(ev.ProductID); id != "" {
		product, err = uc.productRepo.GetByID(ctx, id)
	} else {
		product, err = uc.productRepo.GetByCode(ctx, strings.TrimSpace(ev.ProductCode))
	}
	if err != nil {
		return nil, fmt.Errorf("consultando producto: %w", err)
	}
	if product == nil {
		return nil, domain.FieldError("product", domain.ErrUnknownProduct)
	}
	return product, nil
}

// applyBatch aplica todos los movimientos en una sola transacción, reintentando ante conflicto.
func (uc *ApplyStockEventsUseCase) applyBatch(ctx context.Context, facilityID string, pending []pendingEntry, userID string, log zerolog.Logger) (*ApplyResult, error) {
	var applied []*entity.StockCardEntry
	err := uc.withRetry(ctx, log, func() error {
		applied = applied[:0]
		return uc.txRunner.Run(ctx, func(cards repository.StockCardRepository, lots repository.LotRepository, entries repository.StockCardEntryRepository) error {
			for _, p := range pending {
				e, err := uc.applyOne(ctx, cards, lots, entries, facilityID, p, userID)
				if err != nil {
					return domain.AtEvent(p.index, err)
				}
				applied = append(applied, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.recordApplied(ctx, facilityID, userID, applied, log)
	return resultOf(applied), nil
}

// applyPerEntry aplica cada movimiento en su propia transacción. Si uno falla, los anteriores quedan aplicados
// y el resultado informa cuántos.
func (uc *ApplyStockEventsUseCase) applyPerEntry(ctx context.Context, facilityID string, pending []pendingEntry, userID string, log zerolog.Logger) (*ApplyResult, error) {
	applied := make([]*entity.StockCardEntry, 0, len(pending))
	for _, p := range pending {
		var e *entity.StockCardEntry
		err := uc.withRetry(ctx, log, func() error {
			return uc.txRunner.Run(ctx, func(cards repository.StockCardRepository, lots repository.LotRepository, entries repository.StockCardEntryRepository) error {
				var err error
				e, err = uc.applyOne(ctx, cards, lots, entries, facilityID, p, userID)
				return err
			})
		})
		if err != nil {
			uc.recordApplied(ctx, facilityID, userID, applied, log)
			return resultOf(applied), domain.AtEvent(p.index, err)
		}
		applied = append(applied, e)
	}
	uc.recordApplied(ctx, facilityID, userID, applied, log)
	return resultOf(applied), nil
}

// applyOne obtiene o crea la tarjeta y el lote del movimiento y lo aplica.
// El movimiento se clona para que un reintento nunca reutilice una identidad asignada.
func (uc *ApplyStockEventsUseCase) applyOne(
	ctx context.Context,
	cards repository.StockCardRepository,
	lots repository.LotRepository,
	entries repository.StockCardEntryRepository,
	facilityID string,
	p pendingEntry,
	userID string,
) (*entity.StockCardEntry, error) {
	now := uc.now()
	card, err := getOrCreateCard(ctx, cards, facilityID, p.productID, userID, now)
	if err != nil {
		return nil, err
	}
	loh, err := uc.lots.Resolve(ctx, lots, p.lot, card, userID, now)
	if err != nil {
		return nil, err
	}
	entry := p.entry.Clone()
	if err := uc.cards.ApplyEntry(ctx, cards, lots, entries, card, loh, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// withRetry reintenta fn mientras devuelva un conflicto concurrente, hasta MaxRetries veces.
func (uc *ApplyStockEventsUseCase) withRetry(ctx context.Context, log zerolog.Logger, fn func() error) error {
	backoff := uc.opts.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !domain.IsRetryable(err) {
			return err
		}
		if attempt >= uc.opts.MaxRetries {
			return err
		}
		conflictRetriesTotal.Inc()
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("conflicto concurrente, reintentando")
		if err := uc.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}
}

func (uc *ApplyStockEventsUseCase) recordApplied(ctx context.Context, facilityID, userID string, applied []*entity.StockCardEntry, log zerolog.Logger) {
	if len(applied) == 0 {
		return
	}
	for _, e := range applied {
		entriesAppliedTotal.WithLabelValues(string(e.Type)).Inc()
	}
	rec := JournalRecord{FacilityID: facilityID, UserID: userID, AppliedAt: uc.now(), Entries: applied}
	if err := uc.journal.Record(ctx, rec); err != nil {
		log.Error().Err(err).Int("applied", len(applied)).Msg("no se pudo registrar el lote en el journal")
	}
}

func resultOf(applied []*entity.StockCardEntry) *ApplyResult {
	ids := make([]string, 0, len(applied))
	for _, e := range applied {
		ids = append(ids, e.ID)
	}
	return &ApplyResult{Applied: len(applied), EntryIDs: ids}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
