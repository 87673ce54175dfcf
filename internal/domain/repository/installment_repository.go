package repository

import (
	"time"

	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// InstallmentFilter filtros del listado de crediario.
type InstallmentFilter struct {
	Search   string // nombre o documento del cliente (plegado de acentos en el usecase)
	Status   string // PENDIENTE | PAGADA | VENCIDA, vacío = todas
	DueToday bool
}

// InstallmentWithClient es el read-model del listado: cuota + cliente dueño
// de la venta que la generó.
type InstallmentWithClient struct {
	entity.Installment
	ClientID       string
	ClientName     string
	ClientDocument string
}

// InstallmentRepository define el puerto de persistencia para Installment.
// MarkOverdueBefore existe para el colaborador externo que vence cuotas
// (cmd/backfill); el tracker nunca lo invoca.
type InstallmentRepository interface {
	CreateBatch(installments []*entity.Installment) error
	GetByID(id string) (*entity.Installment, error)
	ListBySale(saleID string) ([]*entity.Installment, error)
	ListWithClient(filter InstallmentFilter) ([]*InstallmentWithClient, error)
	MarkPaid(id string, paidAt time.Time, paymentMethod string) error
	MarkOverdueBefore(date time.Time) (int64, error)
}
