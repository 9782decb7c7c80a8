package repository

// FilterOp operador permitido en un filtro de listado.
type FilterOp string

const (
	OpEq   FilterOp = "eq"
	OpNeq  FilterOp = "neq"
	OpLt   FilterOp = "lt"
	OpLte  FilterOp = "lte"
	OpGt   FilterOp = "gt"
	OpGte  FilterOp = "gte"
	OpLike FilterOp = "like"
)

// Valid indica si el operador es conocido.
func (o FilterOp) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike:
		return true
	}
	return false
}

// Filter condición explícita {campo, operador, valor}. Field es el nombre lógico
// (ej. "categoria", "cliente_id"); cada adaptador lo valida contra su lista blanca.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// ListQuery filtros y paginación de un listado.
type ListQuery struct {
	Filters []Filter
	Limit   int
	Offset  int
}

// Where agrega un filtro y devuelve la consulta para encadenar.
func (q ListQuery) Where(field string, op FilterOp, value any) ListQuery {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}
