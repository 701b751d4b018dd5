package ledger

import (
	"math"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// EventKind tipo de evento de stock (variante cerrada).
type EventKind string

// Tipos de evento aceptados.
const (
	KindIssue      EventKind = "ISSUE"      // salida hacia otra instalación
	KindReceipt    EventKind = "RECEIPT"    // entrada desde otra instalación
	KindAdjustment EventKind = "ADJUSTMENT" // ajuste con motivo
)

// Valid indica si k es uno de los tipos conocidos.
func (k EventKind) Valid() bool {
	switch k {
	case KindIssue, KindReceipt, KindAdjustment:
		return true
	}
	return false
}

// EntryType tipo de movimiento del ledger que produce cada tipo de evento.
func (k EventKind) EntryType() entity.EntryType {
	switch k {
	case KindIssue:
		return entity.EntryTypeDebit
	case KindReceipt:
		return entity.EntryTypeCredit
	case KindAdjustment:
		return entity.EntryTypeAdjustment
	}
	return ""
}

// StockEvent movimiento enviado por el caller, aún sin validar ni persistir.
// Quantity siempre llega como magnitud; la dirección se deriva del tipo y del motivo.
type StockEvent struct {
	Type            EventKind
	ProductID       string
	ProductCode     string
	FacilityID      string // contraparte: destino en ISSUE, origen en RECEIPT
	Quantity        *int64
	LotID           string
	Lot             *entity.Lot
	ReasonName      string
	Occurred        time.Time
	ReferenceNumber string
	Notes           string
	CustomProps     map[string]string
}

// HasProductReference indica si el evento referencia un producto por ID o por código.
func (e StockEvent) HasProductReference() bool {
	return strings.TrimSpace(e.ProductID) != "" || strings.TrimSpace(e.ProductCode) != ""
}

// Classify valida el evento según su tipo y devuelve el tipo reconocido.
// Los errores envuelven domain.ErrInvalidEvent e informan el campo que falló.
func Classify(e StockEvent) (EventKind, error) {
	if !e.Type.Valid() {
		return "", domain.FieldError("type", domain.ErrInvalidEvent)
	}
	if e.Quantity == nil || *e.Quantity == math.MinInt64 {
		return "", domain.FieldError("quantity", domain.ErrInvalidEvent)
	}
	if !e.HasProductReference() {
		return "", domain.FieldError("product", domain.ErrInvalidEvent)
	}

	switch e.Type {
	case KindIssue, KindReceipt:
		// Se necesita saber hacia dónde va o de dónde viene el stock.
		if strings.TrimSpace(e.FacilityID) == "" {
			return "", domain.FieldError("facility_id", domain.ErrInvalidEvent)
		}
	case KindAdjustment:
		if strings.TrimSpace(e.ReasonName) == "" {
			return "", domain.FieldError("reason_name", domain.ErrInvalidEvent)
		}
	}
	return e.Type, nil
}
