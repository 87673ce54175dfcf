package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuota. VENCIDA la fija un proceso externo
// (ver CashRegisterRepository.MarkOverdueBefore); aquí solo se lee.
const (
	InstallmentPending = "PENDIENTE"
	InstallmentPaid    = "PAGADA"
	InstallmentOverdue = "VENCIDA"
)

// Installment es un pago futuro programado de una venta a crédito.
// Se crea en lote junto con la venta y solo muta por la transición a PAGADA.
type Installment struct {
	ID            string
	SaleID        string
	Number        int // ordinal 1..N
	DueDate       time.Time
	Amount        decimal.Decimal
	Status        string
	PaidAt        *time.Time
	PaymentMethod string // método con que se abonó, vacío hasta pagar
	CreatedAt     time.Time
}

// Payable indica si la cuota admite la transición a PAGADA.
func (i *Installment) Payable() bool {
	return i.Status == InstallmentPending || i.Status == InstallmentOverdue
}
