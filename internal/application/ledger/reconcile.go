package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Tipos de agregado conciliados.
const (
	AggregateStockCard = "stock_card"
	AggregateLotOnHand = "lot_on_hand"
)

// Discrepancy diferencia entre el total guardado y la suma del ledger.
type Discrepancy struct {
	Aggregate string `json:"aggregate"`
	ID        string `json:"id"`
	Stored    int64  `json:"stored"`
	Ledger    int64  `json:"ledger"`
	Repaired  bool   `json:"repaired"`
}

// ReconcileReport resultado de una conciliación.
type ReconcileReport struct {
	StartedAt     time.Time     `json:"started_at"`
	CardsChecked  int           `json:"cards_checked"`
	LotsChecked   int           `json:"lots_checked"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// ReconcileUseCase compara los totales de tarjetas y lotes con la suma de sus movimientos.
// Con repair corrige el total guardado usando la misma actualización compare-and-swap del motor.
type ReconcileUseCase struct {
	txRunner  TxRunner
	cardRepo  repository.StockCardRepository
	lotRepo   repository.LotRepository
	entryRepo repository.StockCardEntryRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewReconcileUseCase construye el caso de uso de conciliación.
func NewReconcileUseCase(
	txRunner TxRunner,
	cardRepo repository.StockCardRepository,
	lotRepo repository.LotRepository,
	entryRepo repository.StockCardEntryRepository,
	log zerolog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:  txRunner,
		cardRepo:  cardRepo,
		lotRepo:   lotRepo,
		entryRepo: entryRepo,
		log:       log,
		now:       time.Now,
	}
}

// Run recorre todas las tarjetas. Un error de una tarjeta corta la conciliación.
func (uc *ReconcileUseCase) Run(ctx context.Context, repair bool) (*ReconcileReport, error) {
	report := &ReconcileReport{StartedAt: uc.now(), Discrepancies: []Discrepancy{}}

	cards, err := uc.cardRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listando tarjetas: %w", err)
	}
	for _, card := range cards {
		if err := uc.checkCard(ctx, card, repair, report); err != nil {
			return report, err
		}
	}

	ev := uc.log.Info()
	if len(report.Discrepancies) > 0 {
		ev = uc.log.Warn()
	}
	ev.Int("cards", report.CardsChecked).
		Int("lots", report.LotsChecked).
		Int("discrepancies", len(report.Discrepancies)).
		Bool("repair", repair).
		Msg("conciliación terminada")
	return report, nil
}

func (uc *ReconcileUseCase) checkCard(ctx context.Context, card *entity.StockCard, repair bool, report *ReconcileReport) error {
	report.CardsChecked++
	sum, err := uc.entryRepo.SumByStockCard(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("sumando movimientos de %s: %w", card.ID, err)
	}
	if sum != card.TotalQuantityOnHand {
		d := Discrepancy{Aggregate: AggregateStockCard, ID: card.ID, Stored: card.TotalQuantityOnHand, Ledger: sum}
		if repair {
			if err := uc.repairCard(ctx, card.ID); err != nil {
				return err
			}
			d.Repaired = true
		}
		uc.report(report, d)
	}

	lots, err := uc.lotRepo.ListLotsOnHand(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("listando lotes de %s: %w", card.ID, err)
	}
	for _, l := range lots {
		report.LotsChecked++
		lsum, err := uc.entryRepo.SumByLotOnHand(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("sumando movimientos del lote %s: %w", l.ID, err)
		}
		if lsum == l.QuantityOnHand {
			continue
		}
		d := Discrepancy{Aggregate: AggregateLotOnHand, ID: l.ID, Stored: l.QuantityOnHand, Ledger: lsum}
		if repair {
			if err := uc.repairLot(ctx, l.ID); err != nil {
				return err
			}
			d.Repaired = true
		}
		uc.report(report, d)
	}
	return nil
}

func (uc *ReconcileUseCase) report(report *ReconcileReport, d Discrepancy) {
	reconcileDiscrepanciesTotal.WithLabelValues(d.Aggregate).Inc()
	uc.log.Warn().
		Str("aggregate", d.Aggregate).
		Str("id", d.ID).
		Int64("stored", d.Stored).
		Int64("ledger", d.Ledger).
		Bool("repaired", d.Repaired).
		Msg("total distinto de la suma del ledger")
	report.Discrepancies = append(report.Discrepancies, d)
}

// repairCard recalcula bajo bloqueo para no pisar movimientos concurrentes.
func (uc *ReconcileUseCase) repairCard(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(cards repository.StockCardRepository, _ repository.LotRepository, entries repository.StockCardEntryRepository) error {
		card, err := cards.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.ErrNotFound
		}
		sum, err := entries.SumByStockCard(ctx, id)
		if err != nil {
			return err
		}
		expected := card.Version
		card.TotalQuantityOnHand = sum
		card.ModifiedAt = uc.now()
		return cards.Update(ctx, card, expected)
	})
}

func (uc *ReconcileUseCase) repairLot(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(_ repository.StockCardRepository, lots repository.LotRepository, entries repository.StockCardEntryRepository) error {
		loh, err := lots.GetLotOnHandForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loh == nil {
			return domain.ErrNotFound
		}
		sum, err := entries.SumByLotOnHand(ctx, id)
		if err != nil {
			return err
		}
		expected := loh.Version
		loh.QuantityOnHand = sum
		loh.ModifiedAt = uc.now()
		return lots.UpdateLotOnHand(ctx, loh, expected)
	})
}
