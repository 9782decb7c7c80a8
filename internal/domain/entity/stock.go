package entity

// StockKind identifica la tabla dueña de una existencia. Es un conjunto cerrado:
// nunca se construye a partir de texto del usuario.
type StockKind string

const (
	StockMaterial  StockKind = "materiales"
	StockPlankType StockKind = "tipo_tablas"
	StockPegType   StockKind = "tipo_tacos"
	StockSkidType  StockKind = "tipo_patines"
	StockFuegoYa   StockKind = "fuegoya_productos"
)

// Valid indica si el tipo pertenece al conjunto conocido.
func (k StockKind) Valid() bool {
	switch k {
	case StockMaterial, StockPlankType, StockPegType, StockSkidType, StockFuegoYa:
		return true
	}
	return false
}

// StockAlert fila con existencia por debajo de su mínimo.
type StockAlert struct {
	Kind     StockKind
	ID       int64
	Label    string
	Stock    int
	MinStock int
}

// Deficit unidades faltantes para llegar al mínimo.
func (a StockAlert) Deficit() int {
	if a.Stock >= a.MinStock {
		return 0
	}
	return a.MinStock - a.Stock
}
