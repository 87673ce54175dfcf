// Package installment implementa el crediario: listado de cuotas agrupadas
// por cliente y la transición a PAGADA, que alimenta la caja.
package installment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
	"github.com/dmorales/puntoventa-api/pkg/textutil"
)

// TxRunner ejecuta marcar-pagada + movimiento de caja en una transacción.
type TxRunner interface {
	RunInstallment(ctx context.Context, fn func(
		installmentRepo repository.InstallmentRepository,
		cashRepo repository.CashRegisterRepository,
	) error) error
}

// TrackerUseCase casos de uso del crediario.
type TrackerUseCase struct {
	txRunner        TxRunner
	installmentRepo repository.InstallmentRepository
}

// NewTrackerUseCase construye el caso de uso.
func NewTrackerUseCase(txRunner TxRunner, installmentRepo repository.InstallmentRepository) *TrackerUseCase {
	return &TrackerUseCase{txRunner: txRunner, installmentRepo: installmentRepo}
}

// ClientGroup cuotas de un cliente con sumas por estado.
type ClientGroup struct {
	ClientID     string
	ClientName   string
	PendingTotal decimal.Decimal
	OverdueTotal decimal.Decimal
	Installments []*repository.InstallmentWithClient
}

// ListGroupedByClient agrupa las cuotas por cliente, con sumas de PENDIENTE y
// VENCIDA por grupo, ordenado por nombre ascendente. La búsqueda ignora
// mayúsculas y acentos. El resultado se recalcula en cada llamada.
func (uc *TrackerUseCase) ListGroupedByClient(ctx context.Context, filter repository.InstallmentFilter) ([]*ClientGroup, error) {
	search := filter.Search
	filter.Search = "" // el plegado de acentos se aplica acá, no en SQL
	rows, err := uc.installmentRepo.ListWithClient(filter)
	if err != nil {
		return nil, fmt.Errorf("listar cuotas: %w", err)
	}

	groups := make(map[string]*ClientGroup)
	for _, row := range rows {
		if search != "" &&
			!textutil.ContainsFold(row.ClientName, search) &&
			!textutil.ContainsFold(row.ClientDocument, search) {
			continue
		}
		g, ok := groups[row.ClientID]
		if !ok {
			g = &ClientGroup{
				ClientID:     row.ClientID,
				ClientName:   row.ClientName,
				PendingTotal: decimal.Zero,
				OverdueTotal: decimal.Zero,
			}
			groups[row.ClientID] = g
		}
		switch row.Status {
		case entity.InstallmentPending:
			g.PendingTotal = g.PendingTotal.Add(row.Amount)
		case entity.InstallmentOverdue:
			g.OverdueTotal = g.OverdueTotal.Add(row.Amount)
		}
		g.Installments = append(g.Installments, row)
	}

	out := make([]*ClientGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out, nil
}

// MarkPaid pasa la cuota a PAGADA y, si el operador tiene caja abierta,
// registra el movimiento ABONO_CREDITO por el monto de la cuota. El timestamp
// del movimiento combina la fecha de pago elegida con la hora del reloj
// actual: retrofechar mueve el día pero no el orden dentro del ledger.
func (uc *TrackerUseCase) MarkPaid(ctx context.Context, operatorID, installmentID string, paymentDate time.Time, paymentMethod string) (*entity.Installment, error) {
	if operatorID == "" || installmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if paymentMethod == "" {
		paymentMethod = entity.PaymentCash
	}

	now := time.Now()
	paidAt := time.Date(
		paymentDate.Year(), paymentDate.Month(), paymentDate.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location(),
	)

	var paid *entity.Installment
	err := uc.txRunner.RunInstallment(ctx, func(
		installmentRepo repository.InstallmentRepository,
		cashRepo repository.CashRegisterRepository,
	) error {
		inst, err := installmentRepo.GetByID(installmentID)
		if err != nil {
			return fmt.Errorf("buscar cuota: %w", err)
		}
		if inst == nil {
			return domain.ErrNotFound
		}
		if !inst.Payable() {
			return domain.ErrConflict
		}
		if err := installmentRepo.MarkPaid(inst.ID, paidAt, paymentMethod); err != nil {
			return fmt.Errorf("marcar cuota pagada: %w", err)
		}
		inst.Status = entity.InstallmentPaid
		inst.PaidAt = &paidAt
		inst.PaymentMethod = paymentMethod
		paid = inst

		register, err := cashRepo.GetOpenByOperator(operatorID)
		if err != nil {
			return fmt.Errorf("buscar caja abierta: %w", err)
		}
		if register == nil {
			return nil // sin caja abierta el abono no genera movimiento
		}
		instID := inst.ID
		saleID := inst.SaleID
		cashTx := &entity.CashTransaction{
			ID:            uuid.New().String(),
			RegisterID:    register.ID,
			SaleID:        &saleID,
			InstallmentID: &instID,
			Description:   fmt.Sprintf("Abono cuota %d venta %s", inst.Number, shortRef(inst.SaleID)),
			Amount:        inst.Amount,
			Type:          entity.TxInstallmentPayment,
			CreatedAt:     paidAt,
		}
		if err := cashRepo.CreateTransaction(cashTx); err != nil {
			return fmt.Errorf("registrar abono en caja: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func shortRef(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
