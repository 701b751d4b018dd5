package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestLatestRecorded_GanaElMasReciente(t *testing.T) {
	history := []entity.KeyValue{
		{Key: "vvmStatus", Value: "1", RecordedAt: t0},
		{Key: "vvmStatus", Value: "2", RecordedAt: t0.Add(time.Hour)},
	}
	assert.Equal(t, map[string]string{"vvmStatus": "2"}, ledger.LatestRecorded().Reduce(history))
}

func TestLatestRecorded_OrdenDeInsercionNoImporta(t *testing.T) {
	history := []entity.KeyValue{
		{Key: "vvmStatus", Value: "2", RecordedAt: t0.Add(time.Hour)},
		{Key: "vvmStatus", Value: "1", RecordedAt: t0},
	}
	assert.Equal(t, map[string]string{"vvmStatus": "2"}, ledger.LatestRecorded().Reduce(history))
}

func TestLatestRecorded_ClavesSinDistinguirMayusculas(t *testing.T) {
	history := []entity.KeyValue{
		{Key: "VVMStatus", Value: "1", RecordedAt: t0},
		{Key: "vvmstatus", Value: "3", RecordedAt: t0.Add(2 * time.Hour)},
		{Key: "donor", Value: "unicef", RecordedAt: t0},
	}
	got := ledger.LatestRecorded().Reduce(history)
	assert.Equal(t, map[string]string{"vvmstatus": "3", "donor": "unicef"}, got)
}

func TestLatestRecorded_EmpateConservaElPrimero(t *testing.T) {
	history := []entity.KeyValue{
		{Key: "k", Value: "a", RecordedAt: t0},
		{Key: "k", Value: "b", RecordedAt: t0},
	}
	assert.Equal(t, map[string]string{"k": "a"}, ledger.LatestRecorded().Reduce(history))
}

func TestReduce_HistorialVacioDevuelveNil(t *testing.T) {
	assert.Nil(t, ledger.LatestRecorded().Reduce(nil))
	assert.Nil(t, ledger.FirstRecorded().Reduce([]entity.KeyValue{}))
}

func TestReducerFor_SeleccionaEstrategia(t *testing.T) {
	history := []entity.KeyValue{
		{Key: "k", Value: "viejo", RecordedAt: t0},
		{Key: "k", Value: "nuevo", RecordedAt: t0.Add(time.Minute)},
	}
	assert.Equal(t, "nuevo", ledger.ReducerFor("latest").Reduce(history)["k"])
	assert.Equal(t, "viejo", ledger.ReducerFor(" FIRST ").Reduce(history)["k"])
	assert.Equal(t, "nuevo", ledger.ReducerFor("").Reduce(history)["k"], "por defecto gana el más reciente")
}

func TestKeyValuesFrom_NormalizaClaves(t *testing.T) {
	got := ledger.KeyValuesFrom(map[string]string{" VVMStatus ": "2", "Donor": "unicef", "  ": "x"}, t0)
	assert.Equal(t, []entity.KeyValue{
		{Key: "donor", Value: "unicef", RecordedAt: t0},
		{Key: "vvmstatus", Value: "2", RecordedAt: t0},
	}, got)
	assert.Nil(t, ledger.KeyValuesFrom(nil, t0))
}
