package ledger

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// SignedQuantity calcula la cantidad firmada a aplicar (servicio de dominio puro).
//
//	q = |cantidad|
//	con motivo:  additive ? q : -q
//	ISSUE:       -q
//	en otro caso: q
//
// El signo con que llegó la cantidad nunca se usa para inferir la dirección.
func SignedQuantity(e StockEvent, reason *entity.StockAdjustmentReason) int64 {
	var q int64
	if e.Quantity != nil {
		q = *e.Quantity
		if q < 0 {
			q = -q
		}
	}
	if reason != nil {
		if reason.Additive {
			return q
		}
		return -q
	}
	if e.Type == KindIssue {
		return -q
	}
	return q
}
