// Package bootstrap arma el store y los casos de uso a partir de la configuración.
// Lo comparten el API y ledgerctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Store repositorios y runner transaccional del backend elegido.
type Store struct {
	Driver     string
	Pool       *pgxpool.Pool // nil con el driver memory
	TxRunner   ledger.TxRunner
	Facilities repository.FacilityRepository
	Products   repository.ProductRepository
	Reasons    repository.StockAdjustmentReasonRepository
	StockCards repository.StockCardRepository
	Lots       repository.LotRepository
	Entries    repository.StockCardEntryRepository
}

// OpenStore abre el backend configurado en STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		s := memory.NewStore()
		seedDemo(s)
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return &Store{
			Driver:     "memory",
			TxRunner:   s,
			Facilities: s.Facilities(),
			Products:   s.Products(),
			Reasons:    s.Reasons(),
			StockCards: s.StockCards(),
			Lots:       s.Lots(),
			Entries:    s.Entries(),
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &Store{
			Driver:     "postgres",
			Pool:       pool,
			TxRunner:   postgres.NewTxRunner(pool),
			Facilities: postgres.NewFacilityRepository(pool),
			Products:   postgres.NewProductRepository(pool),
			Reasons:    postgres.NewStockAdjustmentReasonRepository(pool),
			StockCards: postgres.NewStockCardRepository(pool),
			Lots:       postgres.NewLotRepository(pool),
			Entries:    postgres.NewStockCardEntryRepository(pool),
		}, nil
	}
	return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
}

// Close libera el pool si lo hay.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// ApplyOptions traduce la configuración del motor.
func ApplyOptions(cfg config.LedgerConfig) ledger.Options {
	opts := ledger.DefaultOptions()
	opts.MaxRetries = cfg.MaxRetries
	if cfg.RetryBackoff > 0 {
		opts.RetryBackoff = cfg.RetryBackoff
	}
	if cfg.ApplyMode == ledger.ModePerEntry {
		opts.Mode = ledger.ModePerEntry
	}
	return opts
}

// UseCases casos de uso del ledger sobre un Store.
type UseCases struct {
	Apply     *ledger.ApplyStockEventsUseCase
	Query     *ledger.StockCardQueryUseCase
	Reconcile *ledger.ReconcileUseCase
}

// NewUseCases construye los casos de uso. journal nil usa NopJournal.
func NewUseCases(s *Store, cfg config.LedgerConfig, journal ledger.Journal, log zerolog.Logger) UseCases {
	if journal == nil {
		journal = ledger.NopJournal{}
	}
	return UseCases{
		Apply: ledger.NewApplyStockEventsUseCase(
			s.TxRunner, s.Facilities, s.Products, s.Reasons, s.StockCards, s.Lots,
			journal, log, ApplyOptions(cfg),
		),
		Query:     ledger.NewStockCardQueryUseCase(s.Facilities, s.StockCards, s.Lots, s.Entries, domledger.ReducerFor(cfg.ReduceStrategy)),
		Reconcile: ledger.NewReconcileUseCase(s.TxRunner, s.StockCards, s.Lots, s.Entries, log),
	}
}

// seedDemo datos maestros mínimos para probar el API sin base de datos.
func seedDemo(s *memory.Store) {
	s.AddFacility(&entity.Facility{ID: "demo-facility", Code: "DEMO", Name: "Instalación demo", Active: true})
	s.AddFacility(&entity.Facility{ID: "demo-supplier", Code: "SUP", Name: "Proveedor demo", Active: true})
	s.AddProduct(&entity.Product{ID: "demo-product", Code: "P001", Name: "Producto demo", Active: true})
	s.AddReason(&entity.StockAdjustmentReason{ID: "demo-damage", Name: "Damage", Additive: false})
	s.AddReason(&entity.StockAdjustmentReason{ID: "demo-found", Name: "Found", Additive: true})
}
