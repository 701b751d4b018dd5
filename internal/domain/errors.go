package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// Errores del motor de ledger. Los seis primeros son errores de entrada del caller:
// el lote se aborta sin mutar ningún agregado.
var (
	ErrUnknownFacility = errors.New("instalación desconocida")
	ErrUnknownProduct  = errors.New("producto desconocido")
	ErrUnknownReason   = errors.New("motivo de ajuste desconocido")
	ErrUnknownLot      = errors.New("lote desconocido para la tarjeta de stock")
	ErrInvalidLot      = errors.New("lote inválido")
	ErrInvalidEvent    = errors.New("evento de stock inválido")

	// ErrAggregateCreationFailed falla del servidor al crear tarjeta o lote.
	ErrAggregateCreationFailed = errors.New("no se pudo crear el agregado")
	// ErrConcurrentUpdateConflict otro escritor ganó la carrera sobre el mismo agregado. Reintentable.
	ErrConcurrentUpdateConflict = errors.New("conflicto de actualización concurrente")
	// ErrPersistedEntryImmutable error de programación: un movimiento ya persistido no se vuelve a guardar.
	ErrPersistedEntryImmutable = errors.New("un movimiento persistido es inmutable")
)

// EventError ubica un error dentro de un lote de eventos (posición y campo).
type EventError struct {
	Index int // posición del evento en el lote; -1 si aún no se conoce
	Field string
	Err   error
}

func (e *EventError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("evento %d (%s): %v", e.Index, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("evento %d: %v", e.Index, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// FieldError construye un EventError sin posición, que el motor completa con AtEvent.
func FieldError(field string, err error) *EventError {
	return &EventError{Index: -1, Field: field, Err: err}
}

// AtEvent asigna la posición del evento al error, conservando el campo si ya venía informado.
func AtEvent(index int, err error) error {
	if err == nil {
		return nil
	}
	var ee *EventError
	if errors.As(err, &ee) {
		out := *ee
		out.Index = index
		return &out
	}
	return &EventError{Index: index, Err: err}
}

// IsInputError indica si el error lo causó la entrada del caller (corregible y reenviable).
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrUnknownFacility, ErrUnknownProduct, ErrUnknownReason,
		ErrUnknownLot, ErrInvalidLot, ErrInvalidEvent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable indica si el caller puede reenviar el mismo lote sin cambios.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentUpdateConflict)
}
