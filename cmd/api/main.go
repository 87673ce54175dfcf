package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dmorales/puntoventa-api/internal/application/auth"
	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/application/checkout"
	"github.com/dmorales/puntoventa-api/internal/application/installment"
	"github.com/dmorales/puntoventa-api/internal/application/usecase"
	infrapdf "github.com/dmorales/puntoventa-api/internal/infrastructure/pdf"
	"github.com/dmorales/puntoventa-api/internal/infrastructure/postgres"
	httpRouter "github.com/dmorales/puntoventa-api/internal/interfaces/http"
	"github.com/dmorales/puntoventa-api/pkg/config"
	"github.com/dmorales/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(cfg.App.Env, "info")
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	installmentRepo := postgres.NewInstallmentRepository(pool)
	cashRepo := postgres.NewCashRegisterRepository(pool)
	adjustmentRepo := postgres.NewStockAdjustmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	receiptGen := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(txRunner, productRepo, adjustmentRepo)
	clientUC := usecase.NewClientUseCase(clientRepo)
	checkoutUC := checkout.NewCheckoutUseCase(txRunner, clientRepo, productRepo, saleRepo, receiptGen)
	cashboxUC := cashbox.NewCashboxUseCase(txRunner, cashRepo)
	installmentUC := installment.NewTrackerUseCase(txRunner, installmentRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     productUC,
		ClientUC:      clientUC,
		CheckoutUC:    checkoutUC,
		CashboxUC:     cashboxUC,
		InstallmentUC: installmentUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	// Apagado limpio: SIGINT/SIGTERM cierran el server antes de soltar el pool.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("señal recibida, apagando servidor")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := cfg.HTTP.Addr()
	log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("servidor HTTP")
	}
	log.Info().Msg("servidor detenido")
}
