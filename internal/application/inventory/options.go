package inventory

import "github.com/jhoicas/imanod-api/internal/application/dto"

// Options políticas de existencias.
type Options struct {
	// CreditBack devuelve a la pieza madre las unidades liberadas cuando una actualización
	// reduce el consumo. Apagado por defecto: así se concilian los saldos históricos.
	CreditBack bool
}

func normalizePage(p dto.PageRequest) dto.PageRequest {
	p.DefaultPage()
	return p
}
