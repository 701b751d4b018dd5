package entity

import "time"

// Facility representa una instalación (bodega, centro de salud, depósito) que mantiene stock.
type Facility struct {
	ID        string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
