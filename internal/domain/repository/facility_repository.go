package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// FacilityRepository puerto de consulta de instalaciones (datos maestros).
// GetByID devuelve (nil, nil) si no existe.
type FacilityRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Facility, error)
}
