package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/application/checkout"
	"github.com/dmorales/puntoventa-api/internal/application/installment"
	"github.com/dmorales/puntoventa-api/internal/application/usecase"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de los usecases.
var _ checkout.TxRunner = (*TxRunner)(nil)
var _ cashbox.TxRunner = (*TxRunner)(nil)
var _ installment.TxRunner = (*TxRunner)(nil)
var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunCheckout inicia una transacción con los repos del checkout (venta,
// cuotas, stock, caja) y hace Commit o Rollback.
func (r *TxRunner) RunCheckout(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	installmentRepo repository.InstallmentRepository,
	productRepo repository.ProductRepository,
	cashRepo repository.CashRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewSaleRepository(tx),
		NewInstallmentRepository(tx),
		NewProductRepository(tx),
		NewCashRegisterRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCashbox inicia una transacción con el repo de caja.
func (r *TxRunner) RunCashbox(ctx context.Context, fn func(
	cashRepo repository.CashRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCashRegisterRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAdjust inicia una transacción con los repos del ajuste manual de stock.
func (r *TxRunner) RunAdjust(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	adjRepo repository.StockAdjustmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProductRepository(tx), NewStockAdjustmentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInstallment inicia una transacción con los repos del crediario.
func (r *TxRunner) RunInstallment(ctx context.Context, fn func(
	installmentRepo repository.InstallmentRepository,
	cashRepo repository.CashRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInstallmentRepository(tx), NewCashRegisterRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
