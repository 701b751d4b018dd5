package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Store almacenamiento en memoria con las mismas garantías que el store Postgres:
// índices únicos sobre las claves naturales, compare-and-swap por versión y transacciones
// todo-o-nada. Las transacciones se serializan y trabajan sobre una copia del estado
// que reemplaza al confirmado solo si fn no devuelve error.
type Store struct {
	txMu   sync.Mutex   // serializa escritores
	dataMu sync.RWMutex // protege data
	data   *state
}

type state struct {
	facilities map[string]*entity.Facility
	products   map[string]*entity.Product
	reasons    map[string]*entity.StockAdjustmentReason // por nombre en minúsculas

	cards     map[string]*entity.StockCard
	cardByKey map[string]string // facility/product → id

	lots     map[string]*entity.Lot
	lotByKey map[string]string // clave natural → id

	lotsOnHand map[string]*entity.LotOnHand
	lohByKey   map[string]string // card/lot → id

	entries []*entity.StockCardEntry // orden de inserción
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: &state{
		facilities: map[string]*entity.Facility{},
		products:   map[string]*entity.Product{},
		reasons:    map[string]*entity.StockAdjustmentReason{},
		cards:      map[string]*entity.StockCard{},
		cardByKey:  map[string]string{},
		lots:       map[string]*entity.Lot{},
		lotByKey:   map[string]string{},
		lotsOnHand: map[string]*entity.LotOnHand{},
		lohByKey:   map[string]string{},
	}}
}

// clone copia los índices; las entidades se reemplazan (nunca se modifican en sitio), así que se comparten.
func (s *state) clone() *state {
	return &state{
		facilities: copyMap(s.facilities),
		products:   copyMap(s.products),
		reasons:    copyMap(s.reasons),
		cards:      copyMap(s.cards),
		cardByKey:  copyMap(s.cardByKey),
		lots:       copyMap(s.lots),
		lotByKey:   copyMap(s.lotByKey),
		lotsOnHand: copyMap(s.lotsOnHand),
		lohByKey:   copyMap(s.lohByKey),
		entries:    append([]*entity.StockCardEntry(nil), s.entries...),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// scope acceso al estado: el de una transacción abierta o el confirmado.
type scope struct {
	store *Store
	tx    *state
}

func (sc scope) read(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.dataMu.RLock()
	defer sc.store.dataMu.RUnlock()
	return fn(sc.store.data)
}

// write fuera de transacción se confirma de inmediato (autocommit).
func (sc scope) write(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	return sc.store.runTx(fn)
}

func (s *Store) runTx(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	work := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(work); err != nil {
		return err // rollback: la copia se descarta
	}
	s.dataMu.Lock()
	s.data = work
	s.dataMu.Unlock()
	return nil
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	cards repository.StockCardRepository,
	lots repository.LotRepository,
	entries repository.StockCardEntryRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.runTx(func(st *state) error {
		sc := scope{store: s, tx: st}
		return fn(&StockCardRepo{sc: sc}, &LotRepo{sc: sc}, &StockCardEntryRepo{sc: sc})
	})
}

// Repositorios sobre el estado confirmado.

func (s *Store) Facilities() *FacilityRepo { return &FacilityRepo{sc: scope{store: s}} }
func (s *Store) Products() *ProductRepo   { return &ProductRepo{sc: scope{store: s}} }
func (s *Store) Reasons() *StockAdjustmentReasonRepo {
	return &StockAdjustmentReasonRepo{sc: scope{store: s}}
}
func (s *Store) StockCards() *StockCardRepo    { return &StockCardRepo{sc: scope{store: s}} }
func (s *Store) Lots() *LotRepo                { return &LotRepo{sc: scope{store: s}} }
func (s *Store) Entries() *StockCardEntryRepo { return &StockCardEntryRepo{sc: scope{store: s}} }

// AddFacility, AddProduct y AddReason cargan datos maestros (seed de desarrollo y tests).
func (s *Store) AddFacility(f *entity.Facility) {
	_ = s.runTx(func(st *state) error {
		c := *f
		st.facilities[c.ID] = &c
		return nil
	})
}

func (s *Store) AddProduct(p *entity.Product) {
	_ = s.runTx(func(st *state) error {
		c := *p
		st.products[c.ID] = &c
		return nil
	})
}

func (s *Store) AddReason(r *entity.StockAdjustmentReason) {
	_ = s.runTx(func(st *state) error {
		c := *r
		st.reasons[strings.ToLower(strings.TrimSpace(c.Name))] = &c
		return nil
	})
}
