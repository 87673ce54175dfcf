package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la caja.
const (
	RegisterOpen   = "ABIERTA"
	RegisterClosed = "CERRADA"
)

// Tipos de movimiento de caja. Convención del ledger: solo RETIRO resta en el
// balance; todos los demás suman, incluidos APERTURA y CIERRE, que se
// registran con su monto en positivo. Por eso sumar todos los movimientos de
// una caja cerrada no da cero: el CIERRE duplica el balance en la suma.
const (
	TxSale               = "VENTA"
	TxInstallmentPayment = "ABONO_CREDITO"
	TxOpening            = "APERTURA"
	TxClosing            = "CIERRE"
	TxWithdrawal         = "RETIRO"
	TxDeposit            = "DEPOSITO"
)

// CashRegister es la sesión de caja de un operador, acotada por apertura y
// cierre explícitos. Invariante: a lo sumo una ABIERTA por operador.
type CashRegister struct {
	ID             string
	OperatorID     string
	Status         string
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal // snapshot al cerrar; cero mientras está abierta
	OpenedAt       time.Time
	ClosedAt       *time.Time
}

// CashTransaction es un movimiento del ledger de una caja. Append-only:
// nunca se modifica después de insertado, salvo por el backfill puntual de
// montos en cero (cmd/backfill).
type CashTransaction struct {
	ID            string
	RegisterID    string
	SaleID        *string // referencia débil, solo lookup
	InstallmentID *string
	Description   string
	Amount        decimal.Decimal
	Type          string
	CreatedAt     time.Time
}

// Signed devuelve el monto con el signo que aporta al balance.
func (t *CashTransaction) Signed() decimal.Decimal {
	if t.Type == TxWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}
