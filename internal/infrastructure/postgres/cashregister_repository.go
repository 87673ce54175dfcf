package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

var _ repository.CashRegisterRepository = (*CashRegisterRepo)(nil)

const registerColumns = `id, operator_id, status, initial_balance, final_balance, opened_at, closed_at`

// CashRegisterRepo implementación de CashRegisterRepository. El invariante
// de una sola caja ABIERTA por operador lo sostiene un índice único parcial
// (ver migración 0001); aquí solo se traduce la violación a ErrRegisterAlreadyOpen.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

// CreateRegister persiste una nueva sesión de caja.
func (r *CashRegisterRepo) CreateRegister(register *entity.CashRegister) error {
	query := `
		INSERT INTO cash_registers (` + registerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		register.ID, register.OperatorID, register.Status,
		register.InitialBalance, register.FinalBalance,
		register.OpenedAt, register.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRegisterAlreadyOpen
		}
		return fmt.Errorf("insert cash register: %w", err)
	}
	return nil
}

// GetRegisterByID obtiene una sesión de caja por ID.
func (r *CashRegisterRepo) GetRegisterByID(id string) (*entity.CashRegister, error) {
	query := `SELECT ` + registerColumns + ` FROM cash_registers WHERE id = $1`
	return r.scanRegister(r.q.QueryRow(context.Background(), query, id))
}

// GetOpenByOperator devuelve la caja ABIERTA del operador, o nil si no hay.
func (r *CashRegisterRepo) GetOpenByOperator(operatorID string) (*entity.CashRegister, error) {
	query := `
		SELECT ` + registerColumns + ` FROM cash_registers
		WHERE operator_id = $1 AND status = $2`
	return r.scanRegister(r.q.QueryRow(context.Background(), query, operatorID, entity.RegisterOpen))
}

func (r *CashRegisterRepo) scanRegister(row pgx.Row) (*entity.CashRegister, error) {
	var c entity.CashRegister
	err := row.Scan(
		&c.ID, &c.OperatorID, &c.Status, &c.InitialBalance, &c.FinalBalance,
		&c.OpenedAt, &c.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash register: %w", err)
	}
	return &c, nil
}

// CloseRegister fija el snapshot de balance final y marca CERRADA.
func (r *CashRegisterRepo) CloseRegister(id string, finalBalance decimal.Decimal, closedAt time.Time) error {
	query := `
		UPDATE cash_registers SET status = $2, final_balance = $3, closed_at = $4
		WHERE id = $1 AND status = $5`
	cmd, err := r.q.Exec(context.Background(), query,
		id, entity.RegisterClosed, finalBalance, closedAt, entity.RegisterOpen,
	)
	if err != nil {
		return fmt.Errorf("close cash register: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRegisterClosed
	}
	return nil
}

// CreateTransaction agrega un movimiento al ledger de una caja.
func (r *CashRegisterRepo) CreateTransaction(tx *entity.CashTransaction) error {
	query := `
		INSERT INTO cash_transactions (id, register_id, sale_id, installment_id, description, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.RegisterID, tx.SaleID, tx.InstallmentID,
		tx.Description, tx.Amount, tx.Type, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash transaction: %w", err)
	}
	return nil
}

// ListTransactions lista el ledger de una caja en orden cronológico.
func (r *CashRegisterRepo) ListTransactions(registerID string) ([]*entity.CashTransaction, error) {
	query := `
		SELECT id, register_id, sale_id, installment_id, description, amount, type, created_at
		FROM cash_transactions WHERE register_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, registerID)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashTransaction
	for rows.Next() {
		var t entity.CashTransaction
		if err := rows.Scan(&t.ID, &t.RegisterID, &t.SaleID, &t.InstallmentID,
			&t.Description, &t.Amount, &t.Type, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// SumBalance calcula el balance de una caja en SQL con la convención de
// signos del ledger: solo RETIRO resta.
func (r *CashRegisterRepo) SumBalance(registerID string) (decimal.Decimal, error) {
	query := `
		SELECT coalesce(sum(CASE WHEN type = $2 THEN -amount ELSE amount END), 0)
		FROM cash_transactions WHERE register_id = $1`
	var balance decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, registerID, entity.TxWithdrawal).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum cash balance: %w", err)
	}
	return balance, nil
}

// SumByType agrupa los movimientos de una caja por tipo para el resumen de cierre.
func (r *CashRegisterRepo) SumByType(registerID string) ([]repository.TypeTotal, error) {
	query := `
		SELECT type, coalesce(sum(amount), 0), count(*)
		FROM cash_transactions WHERE register_id = $1
		GROUP BY type ORDER BY type`
	rows, err := r.q.Query(context.Background(), query, registerID)
	if err != nil {
		return nil, fmt.Errorf("sum cash by type: %w", err)
	}
	defer rows.Close()
	var totals []repository.TypeTotal
	for rows.Next() {
		var t repository.TypeTotal
		if err := rows.Scan(&t.Type, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("scan type total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// RepairZeroSaleAmounts copia el total de la venta a los movimientos VENTA
// que quedaron con monto cero. Backfill puntual, idempotente.
func (r *CashRegisterRepo) RepairZeroSaleAmounts() (int64, error) {
	query := `
		UPDATE cash_transactions t SET amount = s.total
		FROM sales s
		WHERE t.sale_id = s.id AND t.type = $1 AND t.amount = 0 AND s.total > 0`
	cmd, err := r.q.Exec(context.Background(), query, entity.TxSale)
	if err != nil {
		return 0, fmt.Errorf("repair zero sale amounts: %w", err)
	}
	return cmd.RowsAffected(), nil
}
