package dto

import "time"

// StockCardResponse tarjeta de stock para visualización.
type StockCardResponse struct {
	ID            string              `json:"id"`
	FacilityID    string              `json:"facility_id"`
	ProductID     string              `json:"product_id"`
	StockOnHand   int64               `json:"stock_on_hand"`
	EffectiveDate time.Time           `json:"effective_date"`
	Notes         string              `json:"notes,omitempty"`
	Entries       []StockCardEntryDTO `json:"entries"`
	LotsOnHand    []LotOnHandResponse `json:"lots_on_hand"`
}

// StockCardEntryDTO movimiento de la tarjeta.
type StockCardEntryDTO struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	Quantity        int64             `json:"quantity"`
	ReferenceNumber string            `json:"reference_number,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	LotOnHandID     string            `json:"lot_on_hand_id,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	ExtraData       map[string]string `json:"extra_data,omitempty"`
	OccurredDate    time.Time         `json:"occurred_date"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
}

// LotOnHandResponse existencias por lote con las propiedades vigentes.
type LotOnHandResponse struct {
	ID               string            `json:"id"`
	LotID            string            `json:"lot_id"`
	LotCode          string            `json:"lot_code,omitempty"`
	ManufacturerName string            `json:"manufacturer_name,omitempty"`
	ManufactureDate  *time.Time        `json:"manufacture_date,omitempty"`
	ExpirationDate   *time.Time        `json:"expiration_date,omitempty"`
	QuantityOnHand   int64             `json:"quantity_on_hand"`
	EffectiveDate    time.Time         `json:"effective_date"`
	ExtraData        map[string]string `json:"extra_data,omitempty"`
}

// StockCardListResponse listado de tarjetas de una instalación.
type StockCardListResponse struct {
	Items []StockCardResponse `json:"items,omitempty"`
	Count int                 `json:"count"`
}
