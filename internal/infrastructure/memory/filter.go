package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/domain"
	"github.com/jhoicas/imanod-api/internal/domain/repository"
)

// fields valores de una fila por nombre lógico de campo (la lista blanca de cada tabla).
type fields map[string]any

func matches(q repository.ListQuery, f fields) (bool, error) {
	for _, flt := range q.Filters {
		v, ok := f[flt.Field]
		if !ok || !flt.Op.Valid() {
			return false, fmt.Errorf("%w: filtro %q no soportado", domain.ErrInvalidInput, flt.Field)
		}
		if flt.Op == repository.OpLike {
			if !strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(flt.Value))) {
				return false, nil
			}
			continue
		}
		c, err := compare(v, flt.Value)
		if err != nil {
			return false, err
		}
		var keep bool
		switch flt.Op {
		case repository.OpEq:
			keep = c == 0
		case repository.OpNeq:
			keep = c != 0
		case repository.OpLt:
			keep = c < 0
		case repository.OpLte:
			keep = c <= 0
		case repository.OpGt:
			keep = c > 0
		case repository.OpGte:
			keep = c >= 0
		}
		if !keep {
			return false, nil
		}
	}
	return true, nil
}

func compare(a, b any) (int, error) {
	switch av := a.(type) {
	case int64:
		bv, ok := toInt64(b)
		if !ok {
			break
		}
		return cmpOrdered(av, bv), nil
	case int:
		bv, ok := toInt64(b)
		if !ok {
			break
		}
		return cmpOrdered(int64(av), bv), nil
	case string:
		return strings.Compare(av, fmt.Sprint(b)), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			break
		}
		if av == bv {
			return 0, nil
		}
		return 1, nil
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		if !ok {
			break
		}
		return av.Cmp(bv), nil
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			break
		}
		return av.Compare(bv), nil
	}
	return 0, fmt.Errorf("%w: valor de filtro %v no comparable", domain.ErrInvalidInput, b)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func cmpOrdered(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// page ordena por id y aplica limit/offset.
func page[T any](rows []T, id func(T) int64, q repository.ListQuery) []T {
	sort.Slice(rows, func(i, j int) bool { return id(rows[i]) < id(rows[j]) })
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			return nil
		}
		rows = rows[q.Offset:]
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

func ptr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
