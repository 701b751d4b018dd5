package entity

import "time"

// LotOnHand existencias de un lote dentro de una tarjeta de stock.
// QuantityOnHand es la suma de las cantidades de los movimientos que referencian este registro.
type LotOnHand struct {
	ID             string
	StockCardID    string // referencia inversa, no propiedad
	LotID          string
	QuantityOnHand int64
	EffectiveDate  time.Time
	Version        int64
	CreatedBy      string
	CreatedAt      time.Time
	ModifiedBy     string
	ModifiedAt     time.Time

	// Solo lectura.
	Lot       *Lot
	KeyValues []KeyValue // historial de propiedades de los movimientos del lote
}

// NewZeroedLotOnHand crea el registro en cero para (tarjeta, lote).
func NewZeroedLotOnHand(stockCardID string, lot *Lot, userID string, now time.Time) *LotOnHand {
	return &LotOnHand{
		StockCardID:   stockCardID,
		LotID:         lot.ID,
		Lot:           lot,
		EffectiveDate: now,
		CreatedBy:     userID,
		CreatedAt:     now,
		ModifiedBy:    userID,
		ModifiedAt:    now,
	}
}

// IsEmpty indica si el lote no tiene existencias.
func (l *LotOnHand) IsEmpty() bool {
	return l.QuantityOnHand == 0
}
