package dto

// ErrorResponse cuerpo de error HTTP.
// Index y Field ubican el evento que causó el error dentro del lote.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Index     *int   `json:"index,omitempty"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Applied   *int   `json:"applied,omitempty"` // movimientos ya aplicados en modo per_entry
}
