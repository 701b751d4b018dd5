package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockCardRepository = (*StockCardRepo)(nil)

// StockCardRepo implementación de StockCardRepository sobre PostgreSQL (usable con pool o tx).
type StockCardRepo struct {
	q Querier
}

// NewStockCardRepository construye el adaptador de tarjetas. Pasar pool o tx (Querier).
func NewStockCardRepository(q Querier) *StockCardRepo {
	return &StockCardRepo{q: q}
}

const stockCardColumns = `id, facility_id, product_id, total_quantity_on_hand, effective_date, notes, version,
	created_by, created_at, modified_by, modified_at`

func scanStockCard(row pgx.Row) (*entity.StockCard, error) {
	var c entity.StockCard
	err := row.Scan(&c.ID, &c.FacilityID, &c.ProductID, &c.TotalQuantityOnHand, &c.EffectiveDate, &c.Notes, &c.Version,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StockCardRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockCard, error) {
	c, err := scanStockCard(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (r *StockCardRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockCard, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	out := []*entity.StockCard{}
	for rows.Next() {
		c, err := scanStockCard(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindByFacilityAndProduct tarjeta de (facility, product); (nil, nil) si no existe.
func (r *StockCardRepo) FindByFacilityAndProduct(ctx context.Context, facilityID, productID string) (*entity.StockCard, error) {
	return r.getOne(ctx, "find stock card",
		`SELECT `+stockCardColumns+` FROM stock_cards WHERE facility_id = $1 AND product_id = $2`, facilityID, productID)
}

// FindByFacilityAndID tarjeta por ID dentro de la instalación.
func (r *StockCardRepo) FindByFacilityAndID(ctx context.Context, facilityID, id string) (*entity.StockCard, error) {
	return r.getOne(ctx, "find stock card",
		`SELECT `+stockCardColumns+` FROM stock_cards WHERE facility_id = $1 AND id = $2`, facilityID, id)
}

// GetForUpdate obtiene la tarjeta y bloquea la fila (SELECT FOR UPDATE).
func (r *StockCardRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockCard, error) {
	return r.getOne(ctx, "get stock card for update",
		`SELECT `+stockCardColumns+` FROM stock_cards WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockCardRepo) ListByFacility(ctx context.Context, facilityID string) ([]*entity.StockCard, error) {
	return r.list(ctx, "list stock cards",
		`SELECT `+stockCardColumns+` FROM stock_cards WHERE facility_id = $1 ORDER BY created_at, id`, facilityID)
}

func (r *StockCardRepo) ListAll(ctx context.Context) ([]*entity.StockCard, error) {
	return r.list(ctx, "list stock cards",
		`SELECT `+stockCardColumns+` FROM stock_cards ORDER BY created_at, id`)
}

// Insert crea la tarjeta. Si (facility, product) ya existe no escribe nada y devuelve domain.ErrDuplicate.
func (r *StockCardRepo) Insert(ctx context.Context, card *entity.StockCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_cards (id, facility_id, product_id, total_quantity_on_hand, effective_date, notes, version,
			created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8, $9, $10)
		ON CONFLICT (facility_id, product_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		card.ID, card.FacilityID, card.ProductID, card.TotalQuantityOnHand, card.EffectiveDate, card.Notes,
		card.CreatedBy, card.CreatedAt, card.ModifiedBy, card.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert stock card: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert stock card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	card.Version = 1
	return nil
}

// Update compare-and-swap sobre version.
func (r *StockCardRepo) Update(ctx context.Context, card *entity.StockCard, expectedVersion int64) error {
	query := `
		UPDATE stock_cards
		SET total_quantity_on_hand = $3, effective_date = $4, notes = $5,
			modified_by = $6, modified_at = $7, version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		card.ID, expectedVersion, card.TotalQuantityOnHand, card.EffectiveDate, card.Notes, card.ModifiedBy, card.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdateConflict
	}
	card.Version = expectedVersion + 1
	return nil
}
