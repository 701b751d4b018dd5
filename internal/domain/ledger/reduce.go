package ledger

import (
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"golang.org/x/text/cases"
)

// Reducer colapsa el historial de propiedades personalizadas en los valores vigentes.
// Devuelve nil si el historial está vacío ("sin propiedades" es distinto de "mapa vacío").
type Reducer interface {
	Reduce(history []entity.KeyValue) map[string]string
}

// Nombres de estrategia aceptados por ReducerFor.
const (
	StrategyLatest = "latest"
	StrategyFirst  = "first"
)

// picker decide si el candidato reemplaza al vigente dentro de un grupo de claves.
type picker func(current, candidate entity.KeyValue) bool

type groupReducer struct {
	replace picker
}

// LatestRecorded gana el registro más reciente. Con igual RecordedAt se conserva el primero insertado.
func LatestRecorded() Reducer {
	return groupReducer{replace: func(cur, cand entity.KeyValue) bool {
		return cand.RecordedAt.After(cur.RecordedAt)
	}}
}

// FirstRecorded gana el registro más antiguo.
func FirstRecorded() Reducer {
	return groupReducer{replace: func(cur, cand entity.KeyValue) bool {
		return cand.RecordedAt.Before(cur.RecordedAt)
	}}
}

// ReducerFor devuelve la estrategia configurada; cualquier otro valor usa LatestRecorded.
func ReducerFor(name string) Reducer {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyFirst:
		return FirstRecorded()
	default:
		return LatestRecorded()
	}
}

func (r groupReducer) Reduce(history []entity.KeyValue) map[string]string {
	if len(history) == 0 {
		return nil
	}
	fold := cases.Fold()
	winners := make(map[string]entity.KeyValue, len(history))
	order := make([]string, 0, len(history))
	for _, kv := range history {
		group := fold.String(kv.Key)
		cur, ok := winners[group]
		if !ok {
			winners[group] = kv
			order = append(order, group)
			continue
		}
		if r.replace(cur, kv) {
			winners[group] = kv
		}
	}
	out := make(map[string]string, len(order))
	for _, g := range order {
		w := winners[g]
		out[w.Key] = w.Value
	}
	return out
}
