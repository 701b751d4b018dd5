package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes y existencias por lote sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, lot_code, manufacturer_name, manufacture_date, expiration_date, created_by, created_at`

// lotOnHandColumns incluye el lote (JOIN lots l).
const lotOnHandColumns = `h.id, h.stock_card_id, h.lot_id, h.quantity_on_hand, h.effective_date, h.version,
	h.created_by, h.created_at, h.modified_by, h.modified_at,
	l.id, l.product_id, l.lot_code, l.manufacturer_name, l.manufacture_date, l.expiration_date, l.created_by, l.created_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l   entity.Lot
		mfg *time.Time
	)
	if err := row.Scan(&l.ID, &l.ProductID, &l.LotCode, &l.ManufacturerName, &mfg, &l.ExpirationDate, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	if mfg != nil {
		l.ManufactureDate = *mfg
	}
	return &l, nil
}

func scanLotOnHand(row pgx.Row) (*entity.LotOnHand, error) {
	var (
		h   entity.LotOnHand
		l   entity.Lot
		mfg *time.Time
	)
	err := row.Scan(&h.ID, &h.StockCardID, &h.LotID, &h.QuantityOnHand, &h.EffectiveDate, &h.Version,
		&h.CreatedBy, &h.CreatedAt, &h.ModifiedBy, &h.ModifiedAt,
		&l.ID, &l.ProductID, &l.LotCode, &l.ManufacturerName, &mfg, &l.ExpirationDate, &l.CreatedBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if mfg != nil {
		l.ManufactureDate = *mfg
	}
	h.Lot = &l
	return &h, nil
}

func (r *LotRepo) getLotOnHand(ctx context.Context, op, query string, args ...any) (*entity.LotOnHand, error) {
	h, err := scanLotOnHand(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

func (r *LotRepo) FindLotByNaturalKey(ctx context.Context, key entity.LotKey) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND lot_code = $2 AND manufacturer_name = $3 AND expiration_date = $4::date`
	l, err := scanLot(r.q.QueryRow(ctx, query, key.ProductID, key.LotCode, key.ManufacturerName, key.ExpirationDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lot: %w", err)
	}
	return l, nil
}

// InsertLot crea el lote; ErrDuplicate si la clave natural ya existe.
func (r *LotRepo) InsertLot(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	key := lot.Key()
	var mfg *time.Time
	if !lot.ManufactureDate.IsZero() {
		d := entity.DateOnly(lot.ManufactureDate)
		mfg = &d
	}
	query := `
		INSERT INTO lots (id, product_id, lot_code, manufacturer_name, manufacture_date, expiration_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, lot_code, manufacturer_name, expiration_date) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		lot.ID, key.ProductID, key.LotCode, key.ManufacturerName, mfg, key.ExpirationDate, lot.CreatedBy, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert lot: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (r *LotRepo) FindLotOnHand(ctx context.Context, stockCardID, lotID string) (*entity.LotOnHand, error) {
	return r.getLotOnHand(ctx, "find lot on hand", `
		SELECT `+lotOnHandColumns+`
		FROM lots_on_hand h JOIN lots l ON l.id = h.lot_id
		WHERE h.stock_card_id = $1 AND h.lot_id = $2`, stockCardID, lotID)
}

func (r *LotRepo) FindLotOnHandByLot(ctx context.Context, stockCardID string, key entity.LotKey) (*entity.LotOnHand, error) {
	return r.getLotOnHand(ctx, "find lot on hand by lot", `
		SELECT `+lotOnHandColumns+`
		FROM lots_on_hand h JOIN lots l ON l.id = h.lot_id
		WHERE h.stock_card_id = $1 AND l.product_id = $2 AND l.lot_code = $3
		  AND l.manufacturer_name = $4 AND l.expiration_date = $5::date`,
		stockCardID, key.ProductID, key.LotCode, key.ManufacturerName, key.ExpirationDate)
}

// GetLotOnHandForUpdate bloquea la fila del lote en la tarjeta (SELECT FOR UPDATE).
func (r *LotRepo) GetLotOnHandForUpdate(ctx context.Context, id string) (*entity.LotOnHand, error) {
	return r.getLotOnHand(ctx, "get lot on hand for update", `
		SELECT `+lotOnHandColumns+`
		FROM lots_on_hand h JOIN lots l ON l.id = h.lot_id
		WHERE h.id = $1
		FOR UPDATE OF h`, id)
}

// InsertLotOnHand crea el registro en cero; ErrDuplicate si (tarjeta, lote) ya existe.
func (r *LotRepo) InsertLotOnHand(ctx context.Context, h *entity.LotOnHand) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots_on_hand (id, stock_card_id, lot_id, quantity_on_hand, effective_date, version,
			created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $8, $9)
		ON CONFLICT (stock_card_id, lot_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		h.ID, h.StockCardID, h.LotID, h.QuantityOnHand, h.EffectiveDate, h.CreatedBy, h.CreatedAt, h.ModifiedBy, h.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert lot on hand: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert lot on hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	h.Version = 1
	return nil
}

// UpdateLotOnHand compare-and-swap sobre version.
func (r *LotRepo) UpdateLotOnHand(ctx context.Context, h *entity.LotOnHand, expectedVersion int64) error {
	query := `
		UPDATE lots_on_hand
		SET quantity_on_hand = $3, effective_date = $4, modified_by = $5, modified_at = $6, version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query, h.ID, expectedVersion, h.QuantityOnHand, h.EffectiveDate, h.ModifiedBy, h.ModifiedAt)
	if err != nil {
		return fmt.Errorf("update lot on hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdateConflict
	}
	h.Version = expectedVersion + 1
	return nil
}

func (r *LotRepo) ListLotsOnHand(ctx context.Context, stockCardID string) ([]*entity.LotOnHand, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotOnHandColumns+`
		FROM lots_on_hand h JOIN lots l ON l.id = h.lot_id
		WHERE h.stock_card_id = $1
		ORDER BY h.created_at, h.id`, stockCardID)
	if err != nil {
		return nil, fmt.Errorf("list lots on hand: %w", err)
	}
	defer rows.Close()
	out := []*entity.LotOnHand{}
	for rows.Next() {
		h, err := scanLotOnHand(rows)
		if err != nil {
			return nil, fmt.Errorf("list lots on hand: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
