// Comando backfill: mantenimiento puntual de datos históricos.
//
//   - Repara movimientos de caja VENTA con monto 0 copiando el total de su
//     venta (corridas anteriores los insertaban sin monto).
//   - Marca VENCIDA toda cuota PENDIENTE con vencimiento anterior a hoy.
//
// Pensado para correrse a mano o desde cron; ambas operaciones son idempotentes.
package main

import (
	"context"
	"time"

	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/infrastructure/postgres"
	"github.com/dmorales/puntoventa-api/pkg/config"
	"github.com/dmorales/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(cfg.App.Env, "info").Component("backfill")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	cashRepo := postgres.NewCashRegisterRepository(pool)
	installmentRepo := postgres.NewInstallmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	cashboxUC := cashbox.NewCashboxUseCase(txRunner, cashRepo)

	repaired, err := cashboxUC.RepairZeroSaleAmounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("reparar movimientos VENTA en cero")
	}
	log.Info().Int64("repaired", repaired).Msg("movimientos VENTA reparados")

	today := time.Now().Truncate(24 * time.Hour)
	overdue, err := installmentRepo.MarkOverdueBefore(today)
	if err != nil {
		log.Fatal().Err(err).Msg("vencer cuotas")
	}
	log.Info().Int64("overdue", overdue).Msg("cuotas marcadas VENCIDA")
}
