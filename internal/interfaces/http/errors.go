package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorCodes código de respuesta por sentinel de dominio.
var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrUnknownFacility, "UNKNOWN_FACILITY", fiber.StatusNotFound},
	{domain.ErrUnknownProduct, "UNKNOWN_PRODUCT", fiber.StatusBadRequest},
	{domain.ErrUnknownReason, "UNKNOWN_REASON", fiber.StatusBadRequest},
	{domain.ErrUnknownLot, "UNKNOWN_LOT", fiber.StatusBadRequest},
	{domain.ErrInvalidLot, "INVALID_LOT", fiber.StatusBadRequest},
	{domain.ErrInvalidEvent, "INVALID_EVENT", fiber.StatusBadRequest},
	{domain.ErrNotFound, "NOT_FOUND", fiber.StatusNotFound},
	{domain.ErrConcurrentUpdateConflict, "CONCURRENT_UPDATE", fiber.StatusConflict},
	{domain.ErrUnauthorized, "UNAUTHORIZED", fiber.StatusUnauthorized},
	{domain.ErrForbidden, "FORBIDDEN", fiber.StatusForbidden},
}

// writeError traduce un error del motor a ErrorResponse. Lo no clasificado es 500.
func writeError(c *fiber.Ctx, err error) error {
	status, resp := toErrorResponse(err)
	return c.Status(status).JSON(resp)
}

func toErrorResponse(err error) (int, dto.ErrorResponse) {
	resp := dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	status := fiber.StatusInternalServerError
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			resp.Code = ec.code
			resp.Message = err.Error()
			status = ec.status
			break
		}
	}
	resp.Retryable = domain.IsRetryable(err)

	var ee *domain.EventError
	if errors.As(err, &ee) {
		if ee.Index >= 0 {
			idx := ee.Index
			resp.Index = &idx
		}
		resp.Field = ee.Field
	}
	return status, resp
}
