package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/imanod-api/internal/application/dto"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
)

// ReplenishmentLister fuente de la lista de reposición.
type ReplenishmentLister interface {
	GenerateReplenishmentList(ctx context.Context, kind string) ([]dto.StockAlertResponse, error)
}

var kindLabels = map[string]string{
	string(entity.StockMaterial):  "Material",
	string(entity.StockPlankType): "Tipo de tabla",
	string(entity.StockPegType):   "Tipo de taco",
	string(entity.StockSkidType):  "Tipo de patín",
	string(entity.StockFuegoYa):   "Producto FuegoYa",
}

// AlertDigest envía periódicamente por correo las existencias bajo mínimo.
type AlertDigest struct {
	source   ReplenishmentLister
	mailer   ports.Mailer
	to       []string
	interval time.Duration
	now      func() time.Time
}

// NewAlertDigest construye el resumen periódico.
func NewAlertDigest(source ReplenishmentLister, mailer ports.Mailer, to []string, interval time.Duration) *AlertDigest {
	return &AlertDigest{source: source, mailer: mailer, to: to, interval: interval, now: time.Now}
}

// Start lanza la goroutine del ticker; termina con ctx.
func (d *AlertDigest) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		log.Info().Dur("interval", d.interval).Msg("alert_digest: iniciado")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alert_digest: detenido")
				return
			case <-ticker.C:
				if err := d.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("alert_digest: fallo en el envío")
				}
			}
		}
	}()
}

// RunOnce consulta las alertas y envía el correo. Sin alertas no envía nada.
func (d *AlertDigest) RunOnce(ctx context.Context) error {
	items, err := d.source.GenerateReplenishmentList(ctx, "")
	if err != nil {
		return fmt.Errorf("alert_digest: listar: %w", err)
	}
	if len(items) == 0 {
		log.Debug().Msg("alert_digest: sin existencias bajo mínimo")
		return nil
	}
	subject := fmt.Sprintf("Imanod: %d existencias bajo mínimo (%s)", len(items), d.now().Format("2006-01-02"))
	if err := d.mailer.Send(d.to, subject, formatDigest(items)); err != nil {
		return err
	}
	log.Info().Int("items", len(items)).Msg("alert_digest: correo enviado")
	return nil
}

func formatDigest(items []dto.StockAlertResponse) string {
	var b strings.Builder
	b.WriteString("Existencias por debajo del mínimo:\n\n")
	for _, it := range items {
		kind, ok := kindLabels[it.Kind]
		if !ok {
			kind = it.Kind
		}
		fmt.Fprintf(&b, "- [%s #%d] %s: stock %d / mínimo %d (faltan %d)\n",
			kind, it.ID, it.Label, it.Stock, it.MinStock, it.Deficit)
	}
	return b.String()
}
