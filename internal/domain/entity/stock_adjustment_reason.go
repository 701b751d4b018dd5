package entity

// StockAdjustmentReason dato de referencia con la polaridad de un ajuste manual.
// Additive = true suma al stock; false lo descuenta.
type StockAdjustmentReason struct {
	ID          string
	Name        string
	Description string
	Additive    bool
}
