package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/orders"
	"github.com/jhoicas/imanod-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Materials     *inventory.MaterialUseCase
	PlankTypes    *inventory.DerivedPartUseCase
	PegTypes      *inventory.DerivedPartUseCase
	SkidTypes     *inventory.SkidTypeUseCase
	Prototypes    *inventory.PrototypeUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Customers     *orders.CustomerUseCase
	Purchases     *orders.PurchaseOrderUseCase
	SalesOrders   *orders.SalesOrderUseCase
	SalesOrderPDF *orders.PDFUseCase
	Products      *credit.ProductUseCase
	Ledger        *credit.LedgerUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas exigen Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Materias primas
	materialHandler := NewMaterialHandler(deps.Materials)
	materiales := api.Group("/materiales")
	materiales.Get("/", materialHandler.List)
	materiales.Post("/", materialHandler.Create)
	materiales.Post("/:categoria<alpha>", materialHandler.Create)
	materiales.Get("/:id<int>", materialHandler.GetByID)
	materiales.Put("/:id<int>", materialHandler.Update)
	materiales.Delete("/:id<int>", materialHandler.Delete)

	// Piezas derivadas
	registerDerivedParts(api.Group("/tipo-tablas"), NewDerivedPartHandler(deps.PlankTypes))
	registerDerivedParts(api.Group("/tipo-tacos"), NewDerivedPartHandler(deps.PegTypes))

	skidHandler := NewSkidTypeHandler(deps.SkidTypes)
	patines := api.Group("/tipo-patines")
	patines.Get("/", skidHandler.List)
	patines.Post("/", skidHandler.Create)
	patines.Get("/:id<int>", skidHandler.GetByID)
	patines.Put("/:id<int>", skidHandler.Update)
	patines.Delete("/:id<int>", skidHandler.Delete)

	prototypeHandler := NewPrototypeHandler(deps.Prototypes)
	prototipos := api.Group("/prototipos")
	prototipos.Get("/", prototypeHandler.List)
	prototipos.Post("/", prototypeHandler.Create)
	prototipos.Get("/:id<int>", prototypeHandler.GetByID)
	prototipos.Put("/:id<int>", prototypeHandler.Update)
	prototipos.Delete("/:id<int>", prototypeHandler.Delete)

	// Clientes y proveedores
	customerHandler := NewCustomerHandler(deps.Customers, deps.Ledger)
	clientes := api.Group("/clientes")
	clientes.Get("/", customerHandler.List)
	clientes.Post("/", customerHandler.Create)
	clientes.Get("/:id<int>", customerHandler.GetByID)
	clientes.Get("/:id<int>/estado-cuenta", customerHandler.Statement)
	proveedores := api.Group("/proveedores")
	proveedores.Get("/", customerHandler.ListSuppliers)
	proveedores.Post("/", customerHandler.CreateSupplier)

	// Encargos y pedidos
	orderHandler := NewOrderHandler(deps.Purchases, deps.SalesOrders, deps.SalesOrderPDF)
	encargos := api.Group("/encargos")
	encargos.Get("/", orderHandler.ListPurchases)
	encargos.Post("/", orderHandler.CreatePurchase)
	encargos.Get("/:id<int>", orderHandler.GetPurchase)
	encargos.Delete("/:id<int>", orderHandler.DeletePurchase)
	encargos.Post("/:id<int>/recibir", orderHandler.ReceivePurchase)
	pedidos := api.Group("/pedidos")
	pedidos.Get("/", orderHandler.ListSales)
	pedidos.Post("/", orderHandler.CreateSale)
	pedidos.Get("/:id<int>", orderHandler.GetSale)
	pedidos.Put("/:id<int>", orderHandler.UpdateSale)
	pedidos.Delete("/:id<int>", orderHandler.DeleteSale)
	pedidos.Get("/:id<int>/pdf", orderHandler.SalePDF)

	// FuegoYa: productos, ventas a crédito y pagos
	fuegoyaHandler := NewFuegoYaHandler(deps.Products, deps.Ledger)
	fuegoya := api.Group("/fuegoya")
	fuegoya.Get("/productos", fuegoyaHandler.ListProducts)
	fuegoya.Post("/productos", fuegoyaHandler.CreateProduct)
	fuegoya.Put("/productos/:id<int>", fuegoyaHandler.UpdateProduct)
	fuegoya.Delete("/productos/:id<int>", fuegoyaHandler.DeleteProduct)
	fuegoya.Get("/ventas", fuegoyaHandler.ListSales)
	fuegoya.Post("/ventas", fuegoyaHandler.CreateSale)
	fuegoya.Get("/ventas/:id<int>", fuegoyaHandler.GetSale)
	fuegoya.Put("/ventas/:id<int>", fuegoyaHandler.UpdateSale)
	fuegoya.Delete("/ventas/:id<int>", fuegoyaHandler.DeleteSale)
	fuegoya.Post("/ventas/:id<int>/pagar", adminOnly, fuegoyaHandler.ForcePay)
	fuegoya.Patch("/ventas/:id<int>/estado", adminOnly, fuegoyaHandler.SetState)
	fuegoya.Get("/pagos", fuegoyaHandler.ListPayments)
	fuegoya.Post("/pagos", fuegoyaHandler.RegisterPayment)
	fuegoya.Delete("/pagos/:id<int>", adminOnly, fuegoyaHandler.DeletePayment)

	// Alertas
	inventoryHandler := NewInventoryHandler(deps.Replenishment)
	api.Get("/alertas/stock", inventoryHandler.GetReplenishmentList)
}

func registerDerivedParts(g fiber.Router, h *DerivedPartHandler) {
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id<int>", h.GetByID)
	g.Put("/:id<int>", h.Update)
	g.Delete("/:id<int>", h.Delete)
}
