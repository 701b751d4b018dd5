package ledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria con datos maestros mínimos
// ──────────────────────────────────────────────────────────────────────────────

const (
	testFacility      = "fac-1"
	testOtherFacility = "fac-2"
	testProduct       = "prod-1"
	testProductCode   = "P001"
	testProduct2      = "prod-2"
	testUser          = "user-1"
)

var testExpiry = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	tx      appledger.TxRunner
	journal *recordingJournal
	uc      *appledger.ApplyStockEventsUseCase
	query   *appledger.StockCardQueryUseCase
}

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddFacility(&entity.Facility{ID: testFacility, Code: "HC01", Name: "Centro de salud", Active: true})
	s.AddFacility(&entity.Facility{ID: testOtherFacility, Code: "WH01", Name: "Bodega regional", Active: true})
	s.AddProduct(&entity.Product{ID: testProduct, Code: testProductCode, Name: "Vacuna BCG", Active: true})
	s.AddProduct(&entity.Product{ID: testProduct2, Code: "P002", Name: "Jeringa 5ml", Active: true})
	s.AddReason(&entity.StockAdjustmentReason{ID: "r-1", Name: "Damage", Additive: false})
	s.AddReason(&entity.StockAdjustmentReason{ID: "r-2", Name: "Found", Additive: true})
	return s
}

func newFixture(t *testing.T, opts appledger.Options, wrap func(appledger.TxRunner) appledger.TxRunner) *fixture {
	t.Helper()
	s := newStore()
	var tx appledger.TxRunner = s
	if wrap != nil {
		tx = wrap(s)
	}
	j := &recordingJournal{}
	uc := appledger.NewApplyStockEventsUseCase(tx, s.Facilities(), s.Products(), s.Reasons(), s.StockCards(), s.Lots(), j, zerolog.Nop(), opts)
	q := appledger.NewStockCardQueryUseCase(s.Facilities(), s.StockCards(), s.Lots(), s.Entries(), nil)
	return &fixture{store: s, tx: tx, journal: j, uc: uc, query: q}
}

func defaultFixture(t *testing.T) *fixture {
	return newFixture(t, appledger.Options{MaxRetries: 3, Mode: appledger.ModeBatch}, nil)
}

func (f *fixture) card(t *testing.T, productID string) *entity.StockCard {
	t.Helper()
	c, err := f.store.StockCards().FindByFacilityAndProduct(context.Background(), testFacility, productID)
	require.NoError(t, err)
	return c
}

func (f *fixture) total(t *testing.T, productID string) int64 {
	t.Helper()
	c := f.card(t, productID)
	if c == nil {
		return 0
	}
	return c.TotalQuantityOnHand
}

func (f *fixture) apply(t *testing.T, events ...ledger.StockEvent) *appledger.ApplyResult {
	t.Helper()
	res, err := f.uc.Apply(context.Background(), testFacility, events, testUser)
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de eventos
// ──────────────────────────────────────────────────────────────────────────────

func q(v int64) *int64 { return &v }

func receipt(n int64) ledger.StockEvent {
	return ledger.StockEvent{Type: ledger.KindReceipt, ProductID: testProduct, FacilityID: testOtherFacility, Quantity: q(n)}
}

func issue(n int64) ledger.StockEvent {
	return ledger.StockEvent{Type: ledger.KindIssue, ProductID: testProduct, FacilityID: testOtherFacility, Quantity: q(n)}
}

func adjustment(reason string, n int64) ledger.StockEvent {
	return ledger.StockEvent{Type: ledger.KindAdjustment, ProductID: testProduct, ReasonName: reason, Quantity: q(n)}
}

func withLot(ev ledger.StockEvent, code string) ledger.StockEvent {
	ev.Lot = &entity.Lot{LotCode: code, ManufacturerName: "Serum Institute", ExpirationDate: testExpiry}
	return ev
}

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type recordingJournal struct {
	mu      sync.Mutex
	records []appledger.JournalRecord
	err     error
}

func (j *recordingJournal) Record(_ context.Context, rec appledger.JournalRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return j.err
}

// flakyTx falla las llamadas indicadas con err antes de delegar al store.
type flakyTx struct {
	inner  appledger.TxRunner
	calls  int32
	failOn func(call int32) bool
	err    error
}

func (f *flakyTx) Run(ctx context.Context, fn func(
	cards repository.StockCardRepository,
	lots repository.LotRepository,
	entries repository.StockCardEntryRepository,
) error) error {
	n := atomic.AddInt32(&f.calls, 1)
	if f.failOn(n) {
		return f.err
	}
	return f.inner.Run(ctx, fn)
}
