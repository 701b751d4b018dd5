package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: el dato maestro referenciado no existe.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

// isSerializationFailure 40001 (serialization_failure), 40P01 (deadlock_detected)
// o 55P03 (lock_not_available, vencido lock_timeout).
func isSerializationFailure(err error) bool {
	switch pgCode(err) {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// mapTxError traduce los conflictos de Postgres al error reintentable del dominio.
func mapTxError(err error) error {
	if err == nil || domain.IsRetryable(err) {
		return err
	}
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %w", domain.ErrConcurrentUpdateConflict, err)
	}
	return err
}
