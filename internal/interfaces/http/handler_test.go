package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/orders"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	"github.com/jhoicas/imanod-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/imanod-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/imanod-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/imanod-api/pkg/jwt"
)

// ── Helpers ─────────────────────────────────────────────────────────────────

type memStorage struct {
	mu sync.Mutex
	n  int
}

func (s *memStorage) Put(_ context.Context, folder, filename string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s/%d-%s", folder, s.n, filename), nil
}

func (s *memStorage) Delete(context.Context, string) error { return nil }

type noopQueue struct{}

func (noopQueue) Enqueue(context.Context, string) {}

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	photos := media.NewPhotos(&memStorage{}, noopQueue{})
	opts := inventory.Options{}
	ledger := credit.NewLedgerUseCase(store, photos)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		Materials:     inventory.NewMaterialUseCase(store, photos),
		PlankTypes:    inventory.NewDerivedPartUseCase(store, photos, entity.StockPlankType, opts),
		PegTypes:      inventory.NewDerivedPartUseCase(store, photos, entity.StockPegType, opts),
		SkidTypes:     inventory.NewSkidTypeUseCase(store, photos, opts),
		Prototypes:    inventory.NewPrototypeUseCase(store, photos),
		Replenishment: inventory.NewReplenishmentUseCase(store),
		Customers:     orders.NewCustomerUseCase(store),
		Purchases:     orders.NewPurchaseOrderUseCase(store),
		SalesOrders:   orders.NewSalesOrderUseCase(store),
		SalesOrderPDF: orders.NewPDFUseCase(store, infrapdf.NewMarotoPDFGenerator("Imanod")),
		Products:      credit.NewProductUseCase(store, photos),
		Ledger:        ledger,
		JWTSecret:     testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

// call envía body como JSON con el rol indicado y decodifica la respuesta en out (si no es nil).
func (f *apiFixture) call(t *testing.T, method, path, role string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set(fiber.HeaderAuthorization, tokenForRole(t, role))
	}
	return f.do(t, req, out)
}

func (f *apiFixture) do(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

const admin = pkgjwt.RoleAdmin

// ── Inventario ──────────────────────────────────────────────────────────────

func TestAPI_CrearPiezasDescuentaMadre(t *testing.T) {
	f := newAPI(t)

	var mat map[string]any
	status := f.call(t, http.MethodPost, "/api/materiales/tablas", admin,
		map[string]any{"title": "Tabla pino 2 m", "unit_price": 5000, "stock": 10, "length": 200}, &mat)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "tabla", mat["category"])
	matID := int64(mat["id"].(float64))

	var part map[string]any
	status = f.call(t, http.MethodPost, "/api/tipo-tablas", admin,
		map[string]any{"material_id": matID, "length": 48, "quantity": 30}, &part)
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 30, part["stock"])
	assert.EqualValues(t, 4, part["pieces_per_parent"])
	assert.EqualValues(t, 8, part["parents_consumed"])

	var after map[string]any
	status = f.call(t, http.MethodGet, fmt.Sprintf("/api/materiales/%d", matID), pkgjwt.RoleOperator, nil, &after)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, after["stock"])
}

func TestAPI_StockInsuficienteRetorna400(t *testing.T) {
	f := newAPI(t)

	var mat map[string]any
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/materiales/tablas", admin,
		map[string]any{"title": "Tabla", "stock": 1, "length": 200}, &mat))

	var errBody map[string]any
	status := f.call(t, http.MethodPost, "/api/tipo-tablas", admin,
		map[string]any{"material_id": mat["id"], "length": 48, "quantity": 30}, &errBody)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody["code"])
	assert.Equal(t, 1, f.store.Stock(entity.StockMaterial, int64(mat["id"].(float64))))
}

func TestAPI_BorrarMaterialReferenciadoRetorna409(t *testing.T) {
	f := newAPI(t)

	var mat map[string]any
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/materiales/tablas", admin,
		map[string]any{"title": "Tabla", "stock": 10, "length": 200}, &mat))
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/tipo-tablas", admin,
		map[string]any{"material_id": mat["id"], "length": 48, "quantity": 4}, nil))

	var errBody struct {
		Code              string   `json:"code"`
		ReferencingTitles []string `json:"referencing_titles"`
	}
	status := f.call(t, http.MethodDelete, fmt.Sprintf("/api/materiales/%d", int64(mat["id"].(float64))), admin, nil, &errBody)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "REFERENCED", errBody.Code)
	assert.NotEmpty(t, errBody.ReferencingTitles)
}

func TestAPI_CategoriaDesconocidaRetorna404(t *testing.T) {
	f := newAPI(t)
	status := f.call(t, http.MethodPost, "/api/materiales/ladrillos", admin, map[string]any{"title": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_MaterialInexistenteRetorna404(t *testing.T) {
	f := newAPI(t)
	var errBody map[string]any
	status := f.call(t, http.MethodGet, "/api/materiales/999", admin, nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestAPI_MultipartConFoto(t *testing.T) {
	f := newAPI(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", `{"title":"Clavo 2\"","unit_price":120,"stock":500}`))
	fw, err := w.CreateFormFile("foto", "clavo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/materiales/clavos", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, tokenForRole(t, admin))

	var mat map[string]any
	status := f.do(t, req, &mat)

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "clavo", mat["category"])
	assert.Equal(t, "materiales/1-clavo.jpg", mat["photo_ref"])
}

func TestAPI_AlertasDeExistencia(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/materiales/postes", admin,
		map[string]any{"title": "Poste", "stock": 1, "min_stock": 5, "length": 240}, nil))

	var body struct {
		Total  int              `json:"total"`
		Alerts []map[string]any `json:"alerts"`
	}
	status := f.call(t, http.MethodGet, "/api/alertas/stock", pkgjwt.RoleOperator, nil, &body)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Total)
	assert.EqualValues(t, 4, body.Alerts[0]["deficit"])
}

// ── FuegoYa ─────────────────────────────────────────────────────────────────

func TestAPI_PagoFIFO(t *testing.T) {
	f := newAPI(t)

	var client, product map[string]any
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/clientes", admin,
		map[string]any{"name": "Ferretería El Tornillo"}, &client))
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/fuegoya/productos", admin,
		map[string]any{"type": "Encendedor x50", "unit_price": 10, "stock": 100}, &product))

	sale := func(total int, date string) map[string]any {
		var s map[string]any
		require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/fuegoya/ventas", admin, map[string]any{
			"client_id": client["id"], "product_id": product["id"], "bag_count": 1, "total_price": total, "date": date,
		}, &s))
		return s
	}
	s1 := sale(100, "2024-03-01T10:00:00Z")
	s2 := sale(50, "2024-03-02T10:00:00Z")

	var pay map[string]any
	status := f.call(t, http.MethodPost, "/api/fuegoya/pagos", pkgjwt.RoleOperator,
		map[string]any{"client_id": client["id"], "amount": 120}, &pay)
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 120, pay["applied"])

	var got1, got2 map[string]any
	f.call(t, http.MethodGet, fmt.Sprintf("/api/fuegoya/ventas/%d", int64(s1["id"].(float64))), admin, nil, &got1)
	f.call(t, http.MethodGet, fmt.Sprintf("/api/fuegoya/ventas/%d", int64(s2["id"].(float64))), admin, nil, &got2)
	assert.Equal(t, "pago", got1["state"])
	assert.Equal(t, "credito", got2["state"])
	assert.EqualValues(t, 30, got2["outstanding"])
}

func TestAPI_PagoConMontoCeroRetornaValidacion(t *testing.T) {
	f := newAPI(t)
	var errBody struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	status := f.call(t, http.MethodPost, "/api/fuegoya/pagos", admin,
		map[string]any{"client_id": 1, "amount": 0}, &errBody)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Equal(t, "gt", errBody.Fields["CreatePaymentRequest.amount"])
}

func TestAPI_ForzarPagoSoloAdmin(t *testing.T) {
	f := newAPI(t)
	status := f.call(t, http.MethodPost, "/api/fuegoya/ventas/1/pagar", pkgjwt.RoleOperator, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = f.call(t, http.MethodPost, "/api/fuegoya/ventas/1/pagar", admin, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_SinTokenRetorna401(t *testing.T) {
	f := newAPI(t)
	status := f.call(t, http.MethodGet, "/api/materiales", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_NITDuplicadoRetorna409(t *testing.T) {
	f := newAPI(t)
	in := map[string]any{"name": "Cliente A", "tax_id": "900123456"}
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/clientes", admin, in, nil))

	var errBody map[string]any
	status := f.call(t, http.MethodPost, "/api/clientes", admin, map[string]any{"name": "Cliente B", "tax_id": "900123456"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errBody["code"])
}
