package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidLength     = fmt.Errorf("%w: la pieza excede el largo de la pieza madre", ErrInvalidInput)
	ErrInvalidState      = fmt.Errorf("%w: estado no permitido", ErrInvalidInput)
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConcurrencyConflict se devuelve cuando un descuento condicional no afecta filas.
	ErrConcurrencyConflict = fmt.Errorf("%w: carrera detectada, reintente", ErrInsufficientStock)
	ErrReferenced          = errors.New("recurso referenciado por otros registros")
	ErrDuplicate           = errors.New("registro duplicado")
	ErrStorage             = errors.New("error de almacenamiento de archivos")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
)

// MaxReferencingTitles límite de títulos listados en un conflicto de referencia.
const MaxReferencingTitles = 5

// ReferencedError bloqueo de borrado: lista los títulos de los registros que referencian al recurso.
type ReferencedError struct {
	Resource string
	Titles   []string
}

// NewReferencedError recorta la lista de títulos a MaxReferencingTitles.
func NewReferencedError(resource string, titles []string) *ReferencedError {
	if len(titles) > MaxReferencingTitles {
		titles = titles[:MaxReferencingTitles]
	}
	return &ReferencedError{Resource: resource, Titles: titles}
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s referenciado por: %s", e.Resource, strings.Join(e.Titles, ", "))
}

// Unwrap permite errors.Is(err, ErrReferenced).
func (e *ReferencedError) Unwrap() error { return ErrReferenced }
