package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// FacilityRepo implementa repository.FacilityRepository en memoria.
type FacilityRepo struct{ sc scope }

var _ repository.FacilityRepository = (*FacilityRepo)(nil)

func (r *FacilityRepo) GetByID(_ context.Context, id string) (*entity.Facility, error) {
	var out *entity.Facility
	_ = r.sc.read(func(st *state) error {
		if f, ok := st.facilities[id]; ok {
			c := *f
			out = &c
		}
		return nil
	})
	return out, nil
}
