package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/puntoventa-api/internal/application/auth"
	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/application/checkout"
	"github.com/dmorales/puntoventa-api/internal/application/installment"
	"github.com/dmorales/puntoventa-api/internal/application/usecase"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	ClientUC      *usecase.ClientUseCase
	CheckoutUC    *checkout.CheckoutUseCase
	CashboxUC     *cashbox.CashboxUseCase
	InstallmentUC *installment.TrackerUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Products (protegido; mutaciones solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.ListLowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/adjustments", productHandler.ListAdjustments)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/stock", adminOnly, productHandler.AdjustStock)

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", adminOnly, clientHandler.Delete)

	// Sales (protegido)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CheckoutUC)
	sales.Post("/", saleHandler.Checkout)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/receipt", saleHandler.Receipt)

	// Cashbox (protegido; la caja es del operador autenticado)
	box := protected.Group("/cashbox")
	cashboxHandler := NewCashboxHandler(deps.CashboxUC)
	box.Post("/open", cashboxHandler.Open)
	box.Post("/close", cashboxHandler.Close)
	box.Get("/summary", cashboxHandler.Summary)
	box.Get("/transactions", cashboxHandler.Transactions)
	box.Post("/transactions", cashboxHandler.Record)

	// Installments / crediario (protegido)
	installments := protected.Group("/installments")
	installmentHandler := NewInstallmentHandler(deps.InstallmentUC)
	installments.Get("/", installmentHandler.List)
	installments.Post("/:id/pay", installmentHandler.Pay)
}
