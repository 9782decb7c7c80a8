package dto

import "github.com/shopspring/decimal"

func init() {
	// Montos como números JSON, no como cadenas.
	decimal.MarshalJSONWithoutQuotes = true
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset están fuera de rango.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva el diagnóstico crudo (ej. error de BD).
type ErrorResponse struct {
	Code              string            `json:"code"`
	Message           string            `json:"message"`
	Details           string            `json:"details,omitempty"`
	Fields            map[string]string `json:"fields,omitempty"`
	ReferencingTitles []string          `json:"referencing_titles,omitempty"`
}

// FileUpload archivo recibido en multipart (foto o logo). No viaja en JSON.
type FileUpload struct {
	Filename string
	Data     []byte
}

// Money redondea a 2 decimales; solo se aplica en respuestas.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
