package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func qty(v int64) *int64 { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de signos: la dirección sale del tipo y del motivo, nunca del signo recibido.
// ──────────────────────────────────────────────────────────────────────────────

func TestSignedQuantity_Tabla(t *testing.T) {
	additive := &entity.StockAdjustmentReason{Name: "Transfer In", Additive: true}
	subtractive := &entity.StockAdjustmentReason{Name: "Damage", Additive: false}

	cases := []struct {
		name   string
		ev     ledger.StockEvent
		reason *entity.StockAdjustmentReason
		want   int64
	}{
		{"ajuste no aditivo", ledger.StockEvent{Type: ledger.KindAdjustment, Quantity: qty(10)}, subtractive, -10},
		{"ajuste aditivo", ledger.StockEvent{Type: ledger.KindAdjustment, Quantity: qty(10)}, additive, 10},
		{"despacho", ledger.StockEvent{Type: ledger.KindIssue, Quantity: qty(10)}, nil, -10},
		{"recepción", ledger.StockEvent{Type: ledger.KindReceipt, Quantity: qty(10)}, nil, 10},
		{"despacho con cantidad negativa", ledger.StockEvent{Type: ledger.KindIssue, Quantity: qty(-10)}, nil, -10},
		{"recepción con cantidad negativa", ledger.StockEvent{Type: ledger.KindReceipt, Quantity: qty(-7)}, nil, 7},
		{"ajuste aditivo con cantidad negativa", ledger.StockEvent{Type: ledger.KindAdjustment, Quantity: qty(-3)}, additive, 3},
		{"ajuste sin motivo resuelto", ledger.StockEvent{Type: ledger.KindAdjustment, Quantity: qty(4)}, nil, 4},
		{"cantidad cero", ledger.StockEvent{Type: ledger.KindIssue, Quantity: qty(0)}, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.SignedQuantity(tc.ev, tc.reason))
		})
	}
}

func TestEventKind_EntryType(t *testing.T) {
	assert.Equal(t, entity.EntryTypeDebit, ledger.KindIssue.EntryType())
	assert.Equal(t, entity.EntryTypeCredit, ledger.KindReceipt.EntryType())
	assert.Equal(t, entity.EntryTypeAdjustment, ledger.KindAdjustment.EntryType())
	assert.Equal(t, entity.EntryType(""), ledger.EventKind("TRANSFER").EntryType())
}
