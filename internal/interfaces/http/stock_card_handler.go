package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// StockCardHandler maneja eventos de stock y lectura de tarjetas (protegido).
type StockCardHandler struct {
	apply        *ledger.ApplyStockEventsUseCase
	query        *ledger.StockCardQueryUseCase
	applyTimeout time.Duration
}

// NewStockCardHandler construye el handler. applyTimeout <= 0 no limita la aplicación del lote.
func NewStockCardHandler(apply *ledger.ApplyStockEventsUseCase, query *ledger.StockCardQueryUseCase, applyTimeout time.Duration) *StockCardHandler {
	return &StockCardHandler{apply: apply, query: query, applyTimeout: applyTimeout}
}

// ApplyStockEvents godoc
// @Summary      Aplicar lote de eventos de stock
// @Description  Valida todos los eventos y los aplica en orden. Si alguno es inválido no se aplica ninguno.
// @Tags         stock-cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facilityId  path  string                   true  "Instalación"
// @Param        body        body  []dto.StockEventRequest  true  "Eventos ISSUE, RECEIPT o ADJUSTMENT"
// @Success      201  {object}  dto.ApplyStockEventsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facilityId}/stock-events [post]
func (h *StockCardHandler) ApplyStockEvents(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in []dto.StockEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido: se espera un arreglo de eventos"})
	}

	ctx := c.UserContext()
	if h.applyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.applyTimeout)
		defer cancel()
	}

	res, err := h.apply.ApplyFromRequest(ctx, c.Params("facilityId"), userID, in)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "tiempo de aplicación agotado", Retryable: true})
		}
		status, resp := toErrorResponse(err)
		if res != nil {
			// modo per_entry: lo aplicado antes del error queda confirmado
			applied := res.Applied
			resp.Applied = &applied
		}
		return c.Status(status).JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ApplyStockEventsResponse{Applied: res.Applied, EntryIDs: res.EntryIDs})
}

// GetByProduct godoc
// @Summary      Tarjeta de stock de un producto
// @Tags         stock-cards
// @Security     Bearer
// @Produce      json
// @Param        facilityId          path   string  true   "Instalación"
// @Param        productId           path   string  true   "Producto"
// @Param        entries             query  int     false  "-1 último movimiento, 0 todos, n los n más recientes (por defecto 1)"
// @Param        include_empty_lots  query  bool    false  "Incluir lotes en cero"
// @Success      200  {object}  dto.StockCardResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facilityId}/products/{productId}/stock-card [get]
func (h *StockCardHandler) GetByProduct(c *fiber.Ctx) error {
	resp, err := h.query.GetByFacilityAndProduct(c.UserContext(), c.Params("facilityId"), c.Params("productId"), viewOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Tarjeta de stock por ID
// @Tags         stock-cards
// @Security     Bearer
// @Produce      json
// @Param        facilityId          path   string  true   "Instalación"
// @Param        stockCardId         path   string  true   "Tarjeta"
// @Param        entries             query  int     false  "-1 último movimiento, 0 todos, n los n más recientes (por defecto 1)"
// @Param        include_empty_lots  query  bool    false  "Incluir lotes en cero"
// @Success      200  {object}  dto.StockCardResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facilityId}/stock-cards/{stockCardId} [get]
func (h *StockCardHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.query.GetByID(c.UserContext(), c.Params("facilityId"), c.Params("stockCardId"), viewOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Tarjetas de stock de una instalación
// @Tags         stock-cards
// @Security     Bearer
// @Produce      json
// @Param        facilityId          path   string  true   "Instalación"
// @Param        entries             query  int     false  "-1 último movimiento, 0 todos, n los n más recientes (por defecto 1)"
// @Param        include_empty_lots  query  bool    false  "Incluir lotes en cero"
// @Param        count_only          query  bool    false  "Solo la cantidad de tarjetas"
// @Success      200  {object}  dto.StockCardListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facilityId}/stock-cards [get]
func (h *StockCardHandler) List(c *fiber.Ctx) error {
	facilityID := c.Params("facilityId")
	if c.QueryBool("count_only", false) {
		n, err := h.query.CountByFacility(c.UserContext(), facilityID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.StockCardListResponse{Count: n})
	}
	resp, err := h.query.ListByFacility(c.UserContext(), facilityID, viewOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func viewOptions(c *fiber.Ctx) ledger.ViewOptions {
	return ledger.ViewOptions{
		Entries:          c.QueryInt("entries", 1),
		IncludeEmptyLots: c.QueryBool("include_empty_lots", false),
	}
}
