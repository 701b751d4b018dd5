package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeKey clave de propiedad personalizada: sin espacios externos y en minúsculas.
func NormalizeKey(key string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(key))
}

// KeyValuesFrom copia las propiedades del evento como pares clave/valor registrados en now.
// Las claves vacías se descartan; el orden es estable (alfabético por clave normalizada).
func KeyValuesFrom(props map[string]string, now time.Time) []entity.KeyValue {
	if len(props) == 0 {
		return nil
	}
	out := make([]entity.KeyValue, 0, len(props))
	for k, v := range props {
		key := NormalizeKey(k)
		if key == "" {
			continue
		}
		out = append(out, entity.KeyValue{Key: key, Value: v, RecordedAt: now})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key == out[j].Key {
			return out[i].Value < out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}
