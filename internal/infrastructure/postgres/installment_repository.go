package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

var _ repository.InstallmentRepository = (*InstallmentRepo)(nil)

const installmentColumns = `id, sale_id, number, due_date, amount, status, paid_at, payment_method, created_at`

// InstallmentRepo implementación de InstallmentRepository.
type InstallmentRepo struct {
	q Querier
}

// NewInstallmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInstallmentRepository(q Querier) *InstallmentRepo {
	return &InstallmentRepo{q: q}
}

// CreateBatch inserta el lote de cuotas de una venta a crédito.
func (r *InstallmentRepo) CreateBatch(installments []*entity.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, inst := range installments {
		_, err := r.q.Exec(context.Background(), query,
			inst.ID, inst.SaleID, inst.Number, inst.DueDate, inst.Amount,
			inst.Status, inst.PaidAt, inst.PaymentMethod, inst.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", inst.Number, err)
		}
	}
	return nil
}

// GetByID obtiene una cuota por ID.
func (r *InstallmentRepo) GetByID(id string) (*entity.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`
	var i entity.Installment
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&i.ID, &i.SaleID, &i.Number, &i.DueDate, &i.Amount,
		&i.Status, &i.PaidAt, &i.PaymentMethod, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get installment: %w", err)
	}
	return &i, nil
}

// ListBySale lista las cuotas de una venta en orden de número.
func (r *InstallmentRepo) ListBySale(saleID string) ([]*entity.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE sale_id = $1 ORDER BY number ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Installment
	for rows.Next() {
		var i entity.Installment
		if err := rows.Scan(&i.ID, &i.SaleID, &i.Number, &i.DueDate, &i.Amount,
			&i.Status, &i.PaidAt, &i.PaymentMethod, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// ListWithClient lista cuotas con los datos del cliente dueño de la venta.
// El filtro de búsqueda por texto (con plegado de acentos) se aplica en el
// usecase; aquí solo estado y vencimiento del día.
func (r *InstallmentRepo) ListWithClient(filter repository.InstallmentFilter) ([]*repository.InstallmentWithClient, error) {
	query := `
		SELECT i.id, i.sale_id, i.number, i.due_date, i.amount, i.status,
		       i.paid_at, i.payment_method, i.created_at,
		       c.id, c.name, c.document
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		JOIN clients c ON c.id = s.client_id
		WHERE ($1 = '' OR i.status = $1)
		  AND ($2 = false OR i.due_date::date = current_date)
		ORDER BY c.name ASC, i.due_date ASC, i.number ASC`
	rows, err := r.q.Query(context.Background(), query, filter.Status, filter.DueToday)
	if err != nil {
		return nil, fmt.Errorf("list installments with client: %w", err)
	}
	defer rows.Close()
	var list []*repository.InstallmentWithClient
	for rows.Next() {
		var i repository.InstallmentWithClient
		if err := rows.Scan(&i.ID, &i.SaleID, &i.Number, &i.DueDate, &i.Amount,
			&i.Status, &i.PaidAt, &i.PaymentMethod, &i.CreatedAt,
			&i.ClientID, &i.ClientName, &i.ClientDocument); err != nil {
			return nil, fmt.Errorf("scan installment with client: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// MarkPaid registra el pago de una cuota. La transición solo procede desde
// PENDIENTE o VENCIDA; si la cuota ya está pagada no afecta filas.
func (r *InstallmentRepo) MarkPaid(id string, paidAt time.Time, paymentMethod string) error {
	query := `
		UPDATE installments SET status = $2, paid_at = $3, payment_method = $4
		WHERE id = $1 AND status IN ($5, $6)`
	cmd, err := r.q.Exec(context.Background(), query,
		id, entity.InstallmentPaid, paidAt, paymentMethod,
		entity.InstallmentPending, entity.InstallmentOverdue,
	)
	if err != nil {
		return fmt.Errorf("mark installment paid: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkOverdueBefore marca VENCIDA toda cuota PENDIENTE con vencimiento
// anterior a la fecha dada. Devuelve cuántas filas cambió.
func (r *InstallmentRepo) MarkOverdueBefore(date time.Time) (int64, error) {
	query := `
		UPDATE installments SET status = $1
		WHERE status = $2 AND due_date < $3`
	cmd, err := r.q.Exec(context.Background(), query,
		entity.InstallmentOverdue, entity.InstallmentPending, date,
	)
	if err != nil {
		return 0, fmt.Errorf("mark installments overdue: %w", err)
	}
	return cmd.RowsAffected(), nil
}
