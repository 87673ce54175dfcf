// Package cashbox implementa la caja diaria: una sesión abierta por operador,
// movimientos firmados append-only y cierre con snapshot del balance.
package cashbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta operaciones de caja dentro de una transacción (apertura =
// caja + movimiento APERTURA; cierre = movimiento CIERRE + update de estado).
type TxRunner interface {
	RunCashbox(ctx context.Context, fn func(cashRepo repository.CashRegisterRepository) error) error
}

// CashboxUseCase casos de uso de la caja. El operador llega siempre como
// parámetro explícito.
type CashboxUseCase struct {
	txRunner TxRunner
	cashRepo repository.CashRegisterRepository // lecturas fuera de tx
}

// NewCashboxUseCase construye el caso de uso.
func NewCashboxUseCase(txRunner TxRunner, cashRepo repository.CashRegisterRepository) *CashboxUseCase {
	return &CashboxUseCase{txRunner: txRunner, cashRepo: cashRepo}
}

// Open abre la caja del operador con el balance inicial y registra el
// movimiento APERTURA por ese monto. Rechaza con ErrRegisterAlreadyOpen si ya
// hay una abierta; el índice único parcial de la migración cierra la carrera
// entre dos sesiones del mismo operador.
func (uc *CashboxUseCase) Open(ctx context.Context, operatorID string, initialBalance decimal.Decimal) (*entity.CashRegister, error) {
	if operatorID == "" || initialBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	register := &entity.CashRegister{
		ID:             uuid.New().String(),
		OperatorID:     operatorID,
		Status:         entity.RegisterOpen,
		InitialBalance: initialBalance,
		OpenedAt:       now,
	}
	err := uc.txRunner.RunCashbox(ctx, func(cashRepo repository.CashRegisterRepository) error {
		open, err := cashRepo.GetOpenByOperator(operatorID)
		if err != nil {
			return fmt.Errorf("verificar caja abierta: %w", err)
		}
		if open != nil {
			return domain.ErrRegisterAlreadyOpen
		}
		if err := cashRepo.CreateRegister(register); err != nil {
			return fmt.Errorf("abrir caja: %w", err)
		}
		opening := &entity.CashTransaction{
			ID:          uuid.New().String(),
			RegisterID:  register.ID,
			Description: "Apertura de caja",
			Amount:      initialBalance,
			Type:        entity.TxOpening,
			CreatedAt:   now,
		}
		if err := cashRepo.CreateTransaction(opening); err != nil {
			return fmt.Errorf("registrar apertura: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return register, nil
}

// Record registra un movimiento manual (DEPOSITO o RETIRO) en la caja abierta
// del operador.
func (uc *CashboxUseCase) Record(ctx context.Context, operatorID, txType, description string, amount decimal.Decimal) (*entity.CashTransaction, error) {
	if txType != entity.TxDeposit && txType != entity.TxWithdrawal {
		return nil, domain.ErrInvalidInput
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var cashTx *entity.CashTransaction
	err := uc.txRunner.RunCashbox(ctx, func(cashRepo repository.CashRegisterRepository) error {
		register, err := cashRepo.GetOpenByOperator(operatorID)
		if err != nil {
			return fmt.Errorf("buscar caja abierta: %w", err)
		}
		if register == nil {
			return domain.ErrRegisterClosed
		}
		cashTx = &entity.CashTransaction{
			ID:          uuid.New().String(),
			RegisterID:  register.ID,
			Description: description,
			Amount:      amount,
			Type:        txType,
			CreatedAt:   time.Now(),
		}
		if err := cashRepo.CreateTransaction(cashTx); err != nil {
			return fmt.Errorf("registrar movimiento: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cashTx, nil
}

// CurrentBalance devuelve el balance de la caja abierta del operador:
// suma de movimientos con RETIRO en negativo. Los CIERRE no pesan porque solo
// existen después de cerrar.
func (uc *CashboxUseCase) CurrentBalance(ctx context.Context, operatorID string) (decimal.Decimal, error) {
	register, err := uc.cashRepo.GetOpenByOperator(operatorID)
	if err != nil {
		return decimal.Zero, err
	}
	if register == nil {
		return decimal.Zero, domain.ErrRegisterClosed
	}
	return uc.cashRepo.SumBalance(register.ID)
}

// Close cierra la caja abierta del operador: calcula el balance, escribe el
// movimiento CIERRE por ese monto (en positivo, convención heredada: la suma
// de movimientos tras el cierre no da cero) y marca la caja CERRADA con ese
// balance como final.
func (uc *CashboxUseCase) Close(ctx context.Context, operatorID string) (*entity.CashRegister, error) {
	var closed *entity.CashRegister
	err := uc.txRunner.RunCashbox(ctx, func(cashRepo repository.CashRegisterRepository) error {
		register, err := cashRepo.GetOpenByOperator(operatorID)
		if err != nil {
			return fmt.Errorf("buscar caja abierta: %w", err)
		}
		if register == nil {
			return domain.ErrRegisterClosed
		}
		balance, err := cashRepo.SumBalance(register.ID)
		if err != nil {
			return fmt.Errorf("calcular balance: %w", err)
		}
		now := time.Now()
		closing := &entity.CashTransaction{
			ID:          uuid.New().String(),
			RegisterID:  register.ID,
			Description: "Cierre de caja",
			Amount:      balance,
			Type:        entity.TxClosing,
			CreatedAt:   now,
		}
		if err := cashRepo.CreateTransaction(closing); err != nil {
			return fmt.Errorf("registrar cierre: %w", err)
		}
		if err := cashRepo.CloseRegister(register.ID, balance, now); err != nil {
			return fmt.Errorf("cerrar caja: %w", err)
		}
		register.Status = entity.RegisterClosed
		register.FinalBalance = balance
		register.ClosedAt = &now
		closed = register
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// Summary es el estado de la caja abierta: balance y totales por tipo.
type Summary struct {
	Register *entity.CashRegister
	Balance  decimal.Decimal
	ByType   []repository.TypeTotal
}

// GetSummary devuelve el resumen de la caja abierta del operador.
func (uc *CashboxUseCase) GetSummary(ctx context.Context, operatorID string) (*Summary, error) {
	register, err := uc.cashRepo.GetOpenByOperator(operatorID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, domain.ErrRegisterClosed
	}
	balance, err := uc.cashRepo.SumBalance(register.ID)
	if err != nil {
		return nil, err
	}
	byType, err := uc.cashRepo.SumByType(register.ID)
	if err != nil {
		return nil, err
	}
	return &Summary{Register: register, Balance: balance, ByType: byType}, nil
}

// ListTransactions devuelve los movimientos de la caja abierta en orden cronológico.
func (uc *CashboxUseCase) ListTransactions(ctx context.Context, operatorID string) ([]*entity.CashTransaction, error) {
	register, err := uc.cashRepo.GetOpenByOperator(operatorID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, domain.ErrRegisterClosed
	}
	return uc.cashRepo.ListTransactions(register.ID)
}

// RepairZeroSaleAmounts corre el backfill de movimientos VENTA con monto 0
// (toman el total de su venta). Pensado para cmd/backfill, una sola vez.
func (uc *CashboxUseCase) RepairZeroSaleAmounts(ctx context.Context) (int64, error) {
	return uc.cashRepo.RepairZeroSaleAmounts()
}
