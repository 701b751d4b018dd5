package entity

import "time"

// Product representa un producto del catálogo maestro. Según la generación del API
// los eventos lo referencian por ID o por Code.
type Product struct {
	ID          string
	Code        string // código único del producto
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
