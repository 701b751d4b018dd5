package entity

import (
	"strings"
	"time"
)

// Lot describe un lote de fabricación. Casi inmutable: se crea por valor y no se edita.
// Dos lotes son el mismo si coinciden producto, código, fabricante y fecha de vencimiento.
type Lot struct {
	ID               string
	ProductID        string    `validate:"required"`
	LotCode          string    `validate:"required"`
	ManufacturerName string    `validate:"required"`
	ManufactureDate  time.Time
	ExpirationDate   time.Time `validate:"required"`
	CreatedBy        string
	CreatedAt        time.Time
}

// LotKey clave natural de un lote.
type LotKey struct {
	ProductID        string
	LotCode          string
	ManufacturerName string
	ExpirationDate   time.Time // truncada al día en UTC
}

// Key devuelve la clave natural del lote. La fecha de vencimiento se compara a nivel de día.
func (l *Lot) Key() LotKey {
	return LotKey{
		ProductID:        l.ProductID,
		LotCode:          strings.TrimSpace(l.LotCode),
		ManufacturerName: strings.TrimSpace(l.ManufacturerName),
		ExpirationDate:   DateOnly(l.ExpirationDate),
	}
}

// DateOnly trunca t al día calendario en UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
