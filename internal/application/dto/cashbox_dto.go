package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenRegisterRequest apertura de caja con balance inicial.
type OpenRegisterRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// RecordTransactionRequest movimiento manual (DEPOSITO o RETIRO).
type RecordTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CashRegisterResponse estado de una caja.
type CashRegisterResponse struct {
	ID             string          `json:"id"`
	OperatorID     string          `json:"operator_id"`
	Status         string          `json:"status"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// CashTransactionResponse un movimiento del ledger.
type CashTransactionResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	SaleID        *string         `json:"sale_id,omitempty"`
	InstallmentID *string         `json:"installment_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TypeTotalResponse total y conteo de movimientos por tipo.
type TypeTotalResponse struct {
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// CashSummaryResponse resumen de la caja abierta.
type CashSummaryResponse struct {
	Register CashRegisterResponse `json:"register"`
	Balance  decimal.Decimal      `json:"balance"`
	ByType   []TypeTotalResponse  `json:"by_type"`
}
