package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/imanod-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/imanod-api/pkg/jwt"
)

const (
	testJWTSecret = "imanod-secreto-de-pruebas"
	testUserID    = "bodega-01"
	testIssuer    = "imanod-test"
)

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

// withHeader envía la petición con el header Authorization tal cual y devuelve status y código de error.
func (f *apiFixture) withHeader(t *testing.T, method, path, authHeader string, body any) (int, string) {
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
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	var out any
	status := f.do(t, req, &out)
	errBody, _ := out.(map[string]any)
	code, _ := errBody["code"].(string)
	return status, code
}

// creditSale crea cliente, producto y una venta a crédito de 100; devuelve la ruta de la venta.
func creditSale(t *testing.T, f *apiFixture) string {
	t.Helper()
	var client, product, sale map[string]any
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/clientes", admin,
		map[string]any{"name": "Estibas del Norte"}, &client))
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/fuegoya/productos", admin,
		map[string]any{"type": "Bolsa 2kg", "unit_price": 100, "stock": 10}, &product))
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/fuegoya/ventas", pkgjwt.RoleOperator,
		map[string]any{"client_id": client["id"], "product_id": product["id"], "bag_count": 1}, &sale))
	return fmt.Sprintf("/api/fuegoya/ventas/%d", int64(sale["id"].(float64)))
}

// ── Roles ───────────────────────────────────────────────────────────────────

func TestAuth_OperadorNoPuedeTocarElLibroDeCredito(t *testing.T) {
	f := newAPI(t)
	salePath := creditSale(t, f)
	operador := tokenForRole(t, pkgjwt.RoleOperator)

	status, code := f.withHeader(t, http.MethodPost, salePath+"/pagar", operador, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	status, code = f.withHeader(t, http.MethodPatch, salePath+"/estado", operador, map[string]any{"state": "pago"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	status, _ = f.withHeader(t, http.MethodDelete, "/api/fuegoya/pagos/1", operador, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var got map[string]any
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, salePath, pkgjwt.RoleOperator, nil, &got))
	assert.Equal(t, "credito", got["state"], "la venta no cambia tras el rechazo")
}

func TestAuth_AdminFuerzaElPago(t *testing.T) {
	f := newAPI(t)
	salePath := creditSale(t, f)

	status, _ := f.withHeader(t, http.MethodPost, salePath+"/pagar", tokenForRole(t, admin), nil)
	require.Equal(t, http.StatusOK, status)

	var got map[string]any
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, salePath, admin, nil, &got))
	assert.Equal(t, "pago", got["state"])
	assert.NotNil(t, got["paid_at"])
}

func TestAuth_OperadorOperaInventario(t *testing.T) {
	f := newAPI(t)
	status := f.call(t, http.MethodPost, "/api/materiales/clavos", pkgjwt.RoleOperator,
		map[string]any{"title": "Clavo 2 pulgadas", "stock": 500}, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/materiales", pkgjwt.RoleOperator, nil, nil))
}

// Un token sin rol pasa la autenticación pero no las rutas de administración.
func TestAuth_TokenSinRol(t *testing.T) {
	f := newAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, 60)
	require.NoError(t, err)

	status, _ := f.withHeader(t, http.MethodGet, "/api/fuegoya/ventas", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusOK, status)

	status, code := f.withHeader(t, http.MethodPost, "/api/fuegoya/ventas/1/pagar", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", code)
}

func TestAuth_RolDesconocido(t *testing.T) {
	f := newAPI(t)
	status, code := f.withHeader(t, http.MethodPatch, "/api/fuegoya/ventas/1/estado", tokenForRole(t, "vendedor"),
		map[string]any{"state": "pago"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)
}

// ── Token ───────────────────────────────────────────────────────────────────

func TestAuth_TokensRechazados(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, admin, testIssuer, -5)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, admin, testIssuer, 60)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic YWRtaW46YWRtaW4=", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	f := newAPI(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := f.withHeader(t, http.MethodGet, "/api/alertas/stock", tc.header, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRequestLogger_RegistraUsuarioDelToken(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	app := fiber.New()
	app.Use(apphttp.RequestLogger())
	app.Get("/api/ping", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(fiber.HeaderAuthorization, tokenForRole(t, pkgjwt.RoleOperator))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, testUserID, entry["user_id"])
	assert.EqualValues(t, http.StatusNoContent, entry["status"])
}
