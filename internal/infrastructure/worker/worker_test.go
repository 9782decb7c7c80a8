package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/dto"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeStorage) Put(_ context.Context, folder, filename string, _ []byte) (string, error) {
	return folder + "/" + filename, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
	calls   int
	err     error
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

type fakeLister struct {
	items []dto.StockAlertResponse
	err   error
}

func (l fakeLister) GenerateReplenishmentList(context.Context, string) ([]dto.StockAlertResponse, error) {
	return l.items, l.err
}

// ─── Cola de limpieza ───────────────────────────────────────────────────────

func TestProcessCleanupJob_BorraLaLlave(t *testing.T) {
	store := &fakeStorage{}
	raw, err := encodeDeleteJob("prototipos/abc-foto.jpg")
	require.NoError(t, err)

	processCleanupJob(context.Background(), store, raw)

	assert.Equal(t, []string{"prototipos/abc-foto.jpg"}, store.deleted)
}

func TestProcessCleanupJob_IgnoraTrabajosInvalidos(t *testing.T) {
	store := &fakeStorage{}

	processCleanupJob(context.Background(), store, []byte("no-json"))
	processCleanupJob(context.Background(), store, []byte(`{"type":"otro","payload":{"key":"x"}}`))
	processCleanupJob(context.Background(), store, []byte(`{"type":"borrar_archivo","payload":{}}`))

	assert.Empty(t, store.deleted)
}

func TestProcessCleanupJob_ErrorDeAlmacenamientoNoEntraEnPanico(t *testing.T) {
	store := &fakeStorage{err: errors.New("bucket caído")}
	raw, err := encodeDeleteJob("k")
	require.NoError(t, err)

	assert.NotPanics(t, func() { processCleanupJob(context.Background(), store, raw) })
}

func TestInlineCleanupQueue_BorraAunqueSeCanceleLaPeticion(t *testing.T) {
	store := &fakeStorage{}
	q := NewInlineCleanupQueue(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q.Enqueue(ctx, "a")
	q.Enqueue(ctx, "")
	q.Enqueue(ctx, "b")
	q.Wait()

	assert.ElementsMatch(t, []string{"a", "b"}, store.deleted)
}

// ─── Resumen de alertas ─────────────────────────────────────────────────────

func TestAlertDigest_EnviaCorreoConLasAlertas(t *testing.T) {
	mailer := &fakeMailer{}
	lister := fakeLister{items: []dto.StockAlertResponse{
		{Kind: "tipo_tablas", ID: 3, Label: "Tabla 48 cm", Stock: 0, MinStock: 20, Deficit: 20},
		{Kind: "fuegoya_productos", ID: 1, Label: "carbon", Stock: 4, MinStock: 10, Deficit: 6},
	}}
	d := NewAlertDigest(lister, mailer, []string{"bodega@imanod.co"}, time.Hour)
	d.now = func() time.Time { return time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, d.RunOnce(context.Background()))

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, []string{"bodega@imanod.co"}, mailer.to)
	assert.Equal(t, "Imanod: 2 existencias bajo mínimo (2024-05-02)", mailer.subject)
	assert.Contains(t, mailer.body, "[Tipo de tabla #3] Tabla 48 cm: stock 0 / mínimo 20 (faltan 20)")
	assert.Contains(t, mailer.body, "[Producto FuegoYa #1] carbon")
}

func TestAlertDigest_SinAlertasNoEnvia(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewAlertDigest(fakeLister{}, mailer, []string{"x@y.z"}, time.Hour)

	require.NoError(t, d.RunOnce(context.Background()))
	assert.Zero(t, mailer.calls)
}

func TestAlertDigest_PropagaErrores(t *testing.T) {
	d := NewAlertDigest(fakeLister{err: errors.New("db")}, &fakeMailer{}, []string{"x@y.z"}, time.Hour)
	assert.Error(t, d.RunOnce(context.Background()))

	mailer := &fakeMailer{err: errors.New("smtp")}
	d = NewAlertDigest(fakeLister{items: []dto.StockAlertResponse{{Kind: "materiales", ID: 1}}}, mailer, []string{"x@y.z"}, time.Hour)
	assert.Error(t, d.RunOnce(context.Background()))
}

func TestSMTPMailer_SinDestinatarios(t *testing.T) {
	m := NewSMTPMailer("localhost", 25, "", "", "a@b.c")
	assert.Error(t, m.Send(nil, "s", "b"))
}
