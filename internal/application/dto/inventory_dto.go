package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear materia prima. Category puede venir de la ruta.
type CreateMaterialRequest struct {
	Category  string          `json:"category" validate:"required,oneof=tabla poste clavo fibra"`
	Title     string          `json:"title" validate:"required,min=1,max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Stock     int             `json:"stock" validate:"gte=0"`
	MinStock  int             `json:"min_stock" validate:"gte=0"`
	Length    decimal.Decimal `json:"length" validate:"gte=0"`
	Width     decimal.Decimal `json:"width" validate:"gte=0"`
	Thickness decimal.Decimal `json:"thickness" validate:"gte=0"`
	Notes     string          `json:"notes"`
	Photo     *FileUpload     `json:"-"`
}

// UpdateMaterialRequest entrada para actualizar materia prima. Stock ajusta la existencia por el libro de existencias.
type UpdateMaterialRequest struct {
	Title     *string          `json:"title" validate:"omitempty,min=1,max=200"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Stock     *int             `json:"stock" validate:"omitempty,gte=0"`
	MinStock  *int             `json:"min_stock" validate:"omitempty,gte=0"`
	Length    *decimal.Decimal `json:"length"`
	Width     *decimal.Decimal `json:"width"`
	Thickness *decimal.Decimal `json:"thickness"`
	Notes     *string          `json:"notes"`
	Photo     *FileUpload      `json:"-"`
}

// MaterialResponse salida de materia prima.
type MaterialResponse struct {
	ID        int64           `json:"id"`
	Category  string          `json:"category"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Length    decimal.Decimal `json:"length"`
	Width     decimal.Decimal `json:"width"`
	Thickness decimal.Decimal `json:"thickness"`
	PhotoRef  string          `json:"photo_ref,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateDerivedPartRequest entrada para crear una tipo_tabla o tipo_taco.
// Quantity es la existencia deseada de piezas.
type CreateDerivedPartRequest struct {
	MaterialID int64           `json:"material_id" validate:"required,gt=0"`
	Length     decimal.Decimal `json:"length" validate:"gt=0"`
	Width      decimal.Decimal `json:"width" validate:"gte=0"`
	Thickness  decimal.Decimal `json:"thickness" validate:"gte=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity   int             `json:"quantity" validate:"gte=0"`
	MinStock   int             `json:"min_stock" validate:"gte=0"`
	Photo      *FileUpload     `json:"-"`
}

// UpdateDerivedPartRequest entrada para actualizar una pieza derivada. La materia prima madre no cambia.
type UpdateDerivedPartRequest struct {
	Length    *decimal.Decimal `json:"length"`
	Width     *decimal.Decimal `json:"width"`
	Thickness *decimal.Decimal `json:"thickness"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Quantity  *int             `json:"quantity" validate:"omitempty,gte=0"`
	MinStock  *int             `json:"min_stock" validate:"omitempty,gte=0"`
	Photo     *FileUpload      `json:"-"`
}

// DerivedPartResponse salida de una pieza derivada.
type DerivedPartResponse struct {
	ID              int64           `json:"id"`
	Kind            string          `json:"kind"`
	MaterialID      int64           `json:"material_id"`
	Length          decimal.Decimal `json:"length"`
	Width           decimal.Decimal `json:"width"`
	Thickness       decimal.Decimal `json:"thickness"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Stock           int             `json:"stock"`
	MinStock        int             `json:"min_stock"`
	PiecesPerParent int             `json:"pieces_per_parent,omitempty"`
	ParentsConsumed int             `json:"parents_consumed,omitempty"`
	PhotoRef        string          `json:"photo_ref,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateSkidTypeRequest entrada para crear un tipo_patin (1 tipo_tabla + 3 tipo_tacos por unidad).
type CreateSkidTypeRequest struct {
	PlankTypeID int64       `json:"plank_type_id" validate:"required,gt=0"`
	PegTypeID   int64       `json:"peg_type_id" validate:"required,gt=0"`
	Title       string      `json:"title" validate:"required,min=1,max=200"`
	Dimensions  string      `json:"dimensions"`
	Quantity    int         `json:"quantity" validate:"gte=0"`
	MinStock    int         `json:"min_stock" validate:"gte=0"`
	Logo        *FileUpload `json:"-"`
}

// UpdateSkidTypeRequest entrada para actualizar un tipo_patin. Las piezas madre no cambian.
type UpdateSkidTypeRequest struct {
	Title      *string     `json:"title" validate:"omitempty,min=1,max=200"`
	Dimensions *string     `json:"dimensions"`
	Quantity   *int        `json:"quantity" validate:"omitempty,gte=0"`
	MinStock   *int        `json:"min_stock" validate:"omitempty,gte=0"`
	Logo       *FileUpload `json:"-"`
}

// SkidTypeResponse salida de un tipo_patin.
type SkidTypeResponse struct {
	ID          int64           `json:"id"`
	PlankTypeID int64           `json:"plank_type_id"`
	PegTypeID   int64           `json:"peg_type_id"`
	Title       string          `json:"title"`
	Dimensions  string          `json:"dimensions"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	LogoRef     string          `json:"logo_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BOMLineRequest línea de lista de materiales.
type BOMLineRequest struct {
	ComponentID int64           `json:"component_id" validate:"required,gt=0"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Notes       string          `json:"notes"`
}

// PrototypeRequest entrada para crear o reemplazar un prototipo con su lista de materiales.
type PrototypeRequest struct {
	Title      string           `json:"title" validate:"required,min=1,max=200"`
	Dimensions string           `json:"dimensions"`
	SkidTypeID *int64           `json:"skid_type_id" validate:"omitempty,gt=0"`
	SkidCount  int              `json:"skid_count" validate:"gte=0"`
	ClientID   *int64           `json:"client_id" validate:"omitempty,gt=0"`
	Planks     []BOMLineRequest `json:"planks" validate:"dive"`
	Pegs       []BOMLineRequest `json:"pegs" validate:"dive"`
	Nails      []BOMLineRequest `json:"nails" validate:"dive"`
	Fibers     []BOMLineRequest `json:"fibers" validate:"dive"`
	Photo      *FileUpload      `json:"-"`
}

// BOMLineResponse línea de lista de materiales con el precio vigente del componente.
type BOMLineResponse struct {
	ComponentID int64           `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Notes       string          `json:"notes,omitempty"`
}

// PrototypeResponse salida de un prototipo.
type PrototypeResponse struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Dimensions   string            `json:"dimensions"`
	SkidTypeID   *int64            `json:"skid_type_id"`
	SkidCount    int               `json:"skid_count"`
	ClientID     *int64            `json:"client_id"`
	PhotoRef     string            `json:"photo_ref,omitempty"`
	Active       bool              `json:"active"`
	Planks       []BOMLineResponse `json:"planks"`
	Pegs         []BOMLineResponse `json:"pegs"`
	Nails        []BOMLineResponse `json:"nails"`
	Fibers       []BOMLineResponse `json:"fibers"`
	MaterialCost decimal.Decimal   `json:"material_cost"`
	CreatedAt    time.Time         `json:"created_at"`
}

// StockAlertResponse fila por debajo de su existencia mínima.
type StockAlertResponse struct {
	Kind     string `json:"kind"`
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Deficit  int    `json:"deficit"`
}
