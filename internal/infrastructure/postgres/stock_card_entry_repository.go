package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockCardEntryRepository = (*StockCardEntryRepo)(nil)

// StockCardEntryRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
// Insert escribe varias filas; llamarlo dentro de una transacción.
type StockCardEntryRepo struct {
	q Querier
}

// NewStockCardEntryRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewStockCardEntryRepository(q Querier) *StockCardEntryRepo {
	return &StockCardEntryRepo{q: q}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Insert persiste el movimiento y sus propiedades. Un movimiento con ID ya fue persistido.
func (r *StockCardEntryRepo) Insert(ctx context.Context, e *entity.StockCardEntry) error {
	if e.IsPersisted() {
		return domain.ErrPersistedEntryImmutable
	}
	id := uuid.New().String()
	var reasonID *string
	if e.AdjustmentReason != nil {
		reasonID = nullable(e.AdjustmentReason.ID)
	}
	query := `
		INSERT INTO stock_card_entries (id, stock_card_id, type, quantity, reference_number, reason_id, lot_on_hand_id,
			notes, occurred_at, created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		id, e.StockCardID, string(e.Type), e.Quantity, e.ReferenceNumber, reasonID, nullable(e.LotOnHandID),
		e.Notes, e.Occurred, e.CreatedBy, e.CreatedAt, e.ModifiedBy, e.ModifiedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert stock card entry: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert stock card entry: %w", err)
	}

	if len(e.KeyValues) > 0 {
		batch := &pgx.Batch{}
		for i, kv := range e.KeyValues {
			batch.Queue(`
				INSERT INTO stock_card_entry_key_values (entry_id, position, key, value, recorded_at)
				VALUES ($1, $2, $3, $4, $5)`, id, i, kv.Key, kv.Value, kv.RecordedAt)
		}
		if err := r.sendBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert entry key values: %w", err)
		}
	}
	e.ID = id
	return nil
}

// sendBatch usa SendBatch si el Querier lo soporta (pool y tx lo hacen).
func (r *StockCardEntryRepo) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	sender, ok := r.q.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		for _, qq := range batch.QueuedQueries {
			if _, err := r.q.Exec(ctx, qq.SQL, qq.Arguments...); err != nil {
				return err
			}
		}
		return nil
	}
	return sender.SendBatch(ctx, batch).Close()
}

// ListByStockCard movimientos del más reciente al más antiguo. limit <= 0 = todos.
func (r *StockCardEntryRepo) ListByStockCard(ctx context.Context, stockCardID string, limit int) ([]*entity.StockCardEntry, error) {
	query := `
		SELECT e.id, e.stock_card_id, e.type, e.quantity, e.reference_number, e.lot_on_hand_id, e.notes,
			e.occurred_at, e.created_by, e.created_at, e.modified_by, e.modified_at,
			r.id, r.name, r.description, r.additive
		FROM stock_card_entries e
		LEFT JOIN stock_adjustment_reasons r ON r.id = e.reason_id
		WHERE e.stock_card_id = $1
		ORDER BY e.entry_no DESC
		LIMIT NULLIF($2::int, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.q.Query(ctx, query, stockCardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock card entries: %w", err)
	}
	defer rows.Close()

	out := []*entity.StockCardEntry{}
	byID := map[string]*entity.StockCardEntry{}
	for rows.Next() {
		var (
			e                          entity.StockCardEntry
			typ                        string
			lotOnHandID                *string
			reasonID, reasonName, desc *string
			additive                   *bool
		)
		err := rows.Scan(&e.ID, &e.StockCardID, &typ, &e.Quantity, &e.ReferenceNumber, &lotOnHandID, &e.Notes,
			&e.Occurred, &e.CreatedBy, &e.CreatedAt, &e.ModifiedBy, &e.ModifiedAt,
			&reasonID, &reasonName, &desc, &additive)
		if err != nil {
			return nil, fmt.Errorf("scan stock card entry: %w", err)
		}
		e.Type = entity.EntryType(typ)
		if lotOnHandID != nil {
			e.LotOnHandID = *lotOnHandID
		}
		if reasonID != nil {
			e.AdjustmentReason = &entity.StockAdjustmentReason{ID: *reasonID, Name: *reasonName, Description: *desc, Additive: *additive}
		}
		out = append(out, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, e := range out {
		ids = append(ids, e.ID)
	}
	kvRows, err := r.q.Query(ctx, `
		SELECT entry_id, key, value, recorded_at
		FROM stock_card_entry_key_values
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("list entry key values: %w", err)
	}
	defer kvRows.Close()
	for kvRows.Next() {
		var (
			entryID string
			kv      entity.KeyValue
		)
		if err := kvRows.Scan(&entryID, &kv.Key, &kv.Value, &kv.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan entry key value: %w", err)
		}
		if e, ok := byID[entryID]; ok {
			e.KeyValues = append(e.KeyValues, kv)
		}
	}
	return out, kvRows.Err()
}

// ListKeyValuesByLotOnHand historial de propiedades de los movimientos del lote, en orden de registro.
func (r *StockCardEntryRepo) ListKeyValuesByLotOnHand(ctx context.Context, lotOnHandID string) ([]entity.KeyValue, error) {
	rows, err := r.q.Query(ctx, `
		SELECT kv.key, kv.value, kv.recorded_at
		FROM stock_card_entry_key_values kv
		JOIN stock_card_entries e ON e.id = kv.entry_id
		WHERE e.lot_on_hand_id = $1
		ORDER BY e.entry_no, kv.position`, lotOnHandID)
	if err != nil {
		return nil, fmt.Errorf("list lot key values: %w", err)
	}
	defer rows.Close()
	var out []entity.KeyValue
	for rows.Next() {
		var kv entity.KeyValue
		if err := rows.Scan(&kv.Key, &kv.Value, &kv.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan lot key value: %w", err)
		}
		out = append(out, kv)
	}
	return out, rows.Err()
}

func (r *StockCardEntryRepo) SumByStockCard(ctx context.Context, stockCardID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_card_entries WHERE stock_card_id = $1`, stockCardID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum stock card entries: %w", err)
	}
	return sum, nil
}

func (r *StockCardEntryRepo) SumByLotOnHand(ctx context.Context, lotOnHandID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_card_entries WHERE lot_on_hand_id = $1`, lotOnHandID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum lot entries: %w", err)
	}
	return sum, nil
}
