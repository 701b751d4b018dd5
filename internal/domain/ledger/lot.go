package ledger

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var validate = validator.New()

// ValidateLot completa el producto si falta y valida código, fabricante y vencimiento.
// Errores envuelven domain.ErrInvalidLot con el primer campo inválido.
func ValidateLot(lot *entity.Lot, productID string) error {
	if lot == nil {
		return domain.FieldError("lot", domain.ErrInvalidLot)
	}
	if strings.TrimSpace(lot.ProductID) == "" {
		lot.ProductID = productID
	}
	lot.LotCode = strings.TrimSpace(lot.LotCode)
	lot.ManufacturerName = strings.TrimSpace(lot.ManufacturerName)

	if err := validate.Struct(lot); err != nil {
		field := "lot"
		if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
			field = "lot." + fieldName(ves[0].StructField())
		}
		return domain.FieldError(field, domain.ErrInvalidLot)
	}
	if lot.ProductID != productID {
		// Un lote de otro producto no puede moverse en esta tarjeta.
		return domain.FieldError("lot.product_id", domain.ErrInvalidLot)
	}
	return nil
}

func fieldName(structField string) string {
	switch structField {
	case "ProductID":
		return "product_id"
	case "LotCode":
		return "lot_code"
	case "ManufacturerName":
		return "manufacturer_name"
	case "ExpirationDate":
		return "expiration_date"
	}
	return strings.ToLower(structField)
}
