package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutLine una línea del carrito en la petición de venta.
type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest petición de venta. TenderedAmount solo aplica a EFECTIVO;
// Installments > 0 activa el crédito (el método pasa a ser el tag CREDITO NX).
type CheckoutRequest struct {
	ClientID       string           `json:"client_id"`
	Lines          []CheckoutLine   `json:"lines"`
	PaymentMethod  string           `json:"payment_method"`
	TenderedAmount *decimal.Decimal `json:"tendered_amount,omitempty"`
	Installments   int              `json:"installments,omitempty"`
}

// SaleItemResponse línea de venta persistida.
type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus items y, si aplica, sus cuotas.
type SaleResponse struct {
	ID            string                `json:"id"`
	ClientID      string                `json:"client_id"`
	ClientName    string                `json:"client_name,omitempty"`
	OperatorID    string                `json:"operator_id"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []SaleItemResponse    `json:"items"`
	Installments  []InstallmentResponse `json:"installments,omitempty"`
	// ReceiptError informa que la venta quedó registrada pero el recibo PDF
	// falló; el fallo del recibo nunca revierte la venta.
	ReceiptError string `json:"receipt_error,omitempty"`
}
