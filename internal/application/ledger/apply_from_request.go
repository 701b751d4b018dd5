package ledger

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	// Reporta el nombre JSON del campo en lugar del nombre Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ApplyFromRequest adapta el body HTTP al caso de uso Apply.
func (uc *ApplyStockEventsUseCase) ApplyFromRequest(ctx context.Context, facilityID, userID string, in []dto.StockEventRequest) (*ApplyResult, error) {
	// La instalación se comprueba antes que el formato de los eventos.
	if len(in) > 0 {
		if _, err := uc.lookupFacility(ctx, facilityID); err != nil {
			return nil, err
		}
	}
	events, err := StockEventsFromRequest(in)
	if err != nil {
		return nil, err
	}
	return uc.Apply(ctx, facilityID, events, userID)
}

// StockEventsFromRequest valida el formato de cada evento y lo convierte al modelo de dominio.
// Un error de formato se reporta como ErrInvalidEvent (o ErrInvalidLot en fechas del lote) con su posición.
func StockEventsFromRequest(in []dto.StockEventRequest) ([]ledger.StockEvent, error) {
	out := make([]ledger.StockEvent, 0, len(in))
	for i, r := range in {
		if err := requestValidator.Struct(r); err != nil {
			field := ""
			var ves validator.ValidationErrors
			if errors.As(err, &ves) && len(ves) > 0 {
				field = ves[0].Field()
			}
			return nil, domain.AtEvent(i, domain.FieldError(field, domain.ErrInvalidEvent))
		}
		ev := ledger.StockEvent{
			Type:            ledger.EventKind(r.Type),
			ProductID:       r.ProductID,
			ProductCode:     r.ProductCode,
			FacilityID:      r.FacilityID,
			Quantity:        r.Quantity,
			LotID:           r.LotID,
			ReasonName:      r.ReasonName,
			ReferenceNumber: r.ReferenceNumber,
			Notes:           r.Notes,
			CustomProps:     r.CustomProps,
		}
		if r.OccurredDate != nil {
			ev.Occurred = *r.OccurredDate
		}
		if r.Lot != nil {
			lot, err := lotFromRequest(r.Lot)
			if err != nil {
				return nil, domain.AtEvent(i, err)
			}
			ev.Lot = lot
		}
		out = append(out, ev)
	}
	return out, nil
}

func lotFromRequest(r *dto.LotRequest) (*entity.Lot, error) {
	lot := &entity.Lot{LotCode: r.LotCode, ManufacturerName: r.ManufacturerName}
	if s := strings.TrimSpace(r.ExpirationDate); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.FieldError("lot.expiration_date", domain.ErrInvalidLot)
		}
		lot.ExpirationDate = t
	}
	if s := strings.TrimSpace(r.ManufactureDate); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.FieldError("lot.manufacture_date", domain.ErrInvalidLot)
		}
		lot.ManufactureDate = t
	}
	return lot, nil
}
