package entity

import "time"

// StockCard es el agregado de existencias por (instalación, producto).
// TotalQuantityOnHand es exactamente la suma de las cantidades de todos los movimientos aplicados.
// Version se incrementa en cada actualización (compare-and-swap).
type StockCard struct {
	ID                  string
	FacilityID          string
	ProductID           string
	TotalQuantityOnHand int64
	EffectiveDate       time.Time
	Notes               string
	Version             int64
	CreatedBy           string
	CreatedAt           time.Time
	ModifiedBy          string
	ModifiedAt          time.Time

	// Solo lectura: se cargan al consultar la tarjeta.
	Entries    []*StockCardEntry // más reciente primero
	LotsOnHand []*LotOnHand
}

// NewZeroedStockCard crea una tarjeta en cero para (facility, product).
func NewZeroedStockCard(facilityID, productID, userID string, now time.Time) *StockCard {
	return &StockCard{
		FacilityID:    facilityID,
		ProductID:     productID,
		EffectiveDate: now,
		CreatedBy:     userID,
		CreatedAt:     now,
		ModifiedBy:    userID,
		ModifiedAt:    now,
	}
}
