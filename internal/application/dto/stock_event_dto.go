package dto

import "time"

// StockEventRequest un evento del body de POST /api/facilities/:facilityId/stock-events.
// quantity siempre es una magnitud; el signo lo decide el tipo y el motivo.
type StockEventRequest struct {
	Type            string            `json:"type" validate:"required,oneof=ISSUE RECEIPT ADJUSTMENT"`
	ProductID       string            `json:"product_id,omitempty" validate:"required_without=ProductCode"`
	ProductCode     string            `json:"product_code,omitempty"`
	FacilityID      string            `json:"facility_id,omitempty"` // destino en ISSUE, origen en RECEIPT
	Quantity        *int64            `json:"quantity" validate:"required"`
	LotID           string            `json:"lot_id,omitempty"`
	Lot             *LotRequest       `json:"lot,omitempty"`
	ReasonName      string            `json:"reason_name,omitempty"`
	OccurredDate    *time.Time        `json:"occurred_date,omitempty"`
	ReferenceNumber string            `json:"reference_number,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	CustomProps     map[string]string `json:"custom_properties,omitempty"`
}

// LotRequest lote descriptivo. Fechas en formato YYYY-MM-DD.
type LotRequest struct {
	LotCode          string `json:"lot_code"`
	ManufacturerName string `json:"manufacturer_name"`
	ManufactureDate  string `json:"manufacture_date,omitempty"`
	ExpirationDate   string `json:"expiration_date"`
}

// ApplyStockEventsResponse respuesta de un lote aplicado.
type ApplyStockEventsResponse struct {
	Applied  int      `json:"applied"`
	EntryIDs []string `json:"entry_ids"`
}
