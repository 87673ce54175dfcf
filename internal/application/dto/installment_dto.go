package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentResponse una cuota del crediario.
type InstallmentResponse struct {
	ID            string          `json:"id"`
	SaleID        string          `json:"sale_id"`
	Number        int             `json:"number"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

// ClientInstallmentsGroup cuotas de un cliente con sus sumas por estado.
type ClientInstallmentsGroup struct {
	ClientID     string                `json:"client_id"`
	ClientName   string                `json:"client_name"`
	PendingTotal decimal.Decimal       `json:"pending_total"`
	OverdueTotal decimal.Decimal       `json:"overdue_total"`
	Installments []InstallmentResponse `json:"installments"`
}

// PayInstallmentRequest marca una cuota como pagada. PaymentDate permite
// retrofechar el abono (solo la fecha; la hora la pone el reloj actual).
type PayInstallmentRequest struct {
	PaymentDate   string `json:"payment_date"` // YYYY-MM-DD, vacío = hoy
	PaymentMethod string `json:"payment_method"`
}
