package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestClasificaErroresDePostgres(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	serialization := &pgconn.PgError{Code: "40001"}
	deadlock := fmt.Errorf("commit transaction: %w", &pgconn.PgError{Code: "40P01"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isSerializationFailure(serialization))
	assert.True(t, isSerializationFailure(deadlock))
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, isSerializationFailure(errors.New("otro")))
}

func TestMapTxError_ConflictosSonReintentables(t *testing.T) {
	deadlock := fmt.Errorf("commit transaction: %w", &pgconn.PgError{Code: "40P01"})
	err := mapTxError(deadlock)
	assert.True(t, domain.IsRetryable(err))
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr), "conserva el error original")

	other := errors.New("conexión cerrada")
	assert.Same(t, other, mapTxError(other))
	assert.Nil(t, mapTxError(nil))

	cas := domain.ErrConcurrentUpdateConflict
	assert.Equal(t, cas, mapTxError(cas))
}
