package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// TypeTotal agrupa los movimientos de una caja por tipo (resumen).
type TypeTotal struct {
	Type  string
	Total decimal.Decimal
	Count int
}

// CashRegisterRepository define el puerto de persistencia para la caja y su
// ledger. SumBalance aplica la convención de signos en SQL: RETIRO resta,
// todo lo demás suma.
type CashRegisterRepository interface {
	CreateRegister(register *entity.CashRegister) error
	GetRegisterByID(id string) (*entity.CashRegister, error)
	GetOpenByOperator(operatorID string) (*entity.CashRegister, error)
	CloseRegister(id string, finalBalance decimal.Decimal, closedAt time.Time) error
	CreateTransaction(tx *entity.CashTransaction) error
	ListTransactions(registerID string) ([]*entity.CashTransaction, error)
	SumBalance(registerID string) (decimal.Decimal, error)
	SumByType(registerID string) ([]TypeTotal, error)
	// RepairZeroSaleAmounts corrige movimientos VENTA persistidos con monto 0
	// copiando el total de su venta. Backfill puntual, nunca en el camino de lectura.
	RepairZeroSaleAmounts() (int64, error)
}
