package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApplyEvents  *ledger.ApplyStockEventsUseCase
	StockCards   *ledger.StockCardQueryUseCase
	ApplyTimeout time.Duration
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	handler := NewStockCardHandler(deps.ApplyEvents, deps.StockCards, deps.ApplyTimeout)
	facilities := api.Group("/facilities/:facilityId")

	// Escritura: solo quien administra stock
	facilities.Post("/stock-events", RequireRole(RoleAdmin, RoleStockManager), handler.ApplyStockEvents)

	// Lectura: cualquier rol autenticado
	readers := RequireRole(RoleAdmin, RoleStockManager, RoleViewer)
	facilities.Get("/products/:productId/stock-card", readers, handler.GetByProduct)
	facilities.Get("/stock-cards", readers, handler.List)
	facilities.Get("/stock-cards/:stockCardId", readers, handler.GetByID)
}
