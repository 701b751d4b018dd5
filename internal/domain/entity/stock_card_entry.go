package entity

import "time"

// EntryType tipo de movimiento del ledger.
type EntryType string

// Tipos de movimiento de la tarjeta de stock.
const (
	EntryTypeCredit     EntryType = "CREDIT"     // recepción
	EntryTypeDebit      EntryType = "DEBIT"      // despacho
	EntryTypeAdjustment EntryType = "ADJUSTMENT" // ajuste con motivo
)

// KeyValue propiedad personalizada registrada en un movimiento.
type KeyValue struct {
	Key        string
	Value      string
	RecordedAt time.Time
}

// StockCardEntry movimiento firmado e inmutable aplicado a una tarjeta (y opcionalmente a un lote).
type StockCardEntry struct {
	ID               string
	StockCardID      string
	Type             EntryType
	Quantity         int64 // positivo suma, negativo resta
	ReferenceNumber  string
	AdjustmentReason *StockAdjustmentReason // solo en ADJUSTMENT
	LotOnHandID      string                 // vacío si el movimiento no tiene granularidad de lote
	Notes            string
	KeyValues        []KeyValue
	Occurred         time.Time
	CreatedBy        string
	CreatedAt        time.Time
	ModifiedBy       string
	ModifiedAt       time.Time
}

// IsPersisted indica si el movimiento ya tiene identidad asignada por el store.
func (e *StockCardEntry) IsPersisted() bool {
	return e.ID != ""
}

// Clone devuelve una copia sin identidad, lista para insertarse en un nuevo intento.
func (e *StockCardEntry) Clone() *StockCardEntry {
	out := *e
	out.ID = ""
	if e.KeyValues != nil {
		out.KeyValues = append([]KeyValue(nil), e.KeyValues...)
	}
	return &out
}
