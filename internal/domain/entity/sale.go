package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago de una venta.
const (
	PaymentCash     = "EFECTIVO"
	PaymentCard     = "TARJETA"
	PaymentTransfer = "TRANSFERENCIA"
	PaymentCredit   = "CREDITO" // genera cuotas; el tag persistido incluye el número
)

// CreditTag construye el tag de método de pago para una venta a crédito de n cuotas.
func CreditTag(n int) string {
	return fmt.Sprintf("%s %dX", PaymentCredit, n)
}

// Sale representa la cabecera de una venta. Inmutable una vez creada:
// cualquier corrección se hace con registros compensatorios, no con updates.
type Sale struct {
	ID            string
	ClientID      string
	OperatorID    string
	Total         decimal.Decimal // autoritativo: suma de los items
	PaymentMethod string
	CreatedAt     time.Time
}

// ShortRef devuelve una referencia corta de la venta para descripciones de caja y recibos.
func (s *Sale) ShortRef() string {
	if len(s.ID) < 8 {
		return s.ID
	}
	return s.ID[:8]
}

// SaleItem es una línea de venta. UnitPrice es el precio capturado al agregar
// al carrito: cambios posteriores del precio del producto no lo afectan.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal devuelve cantidad × precio unitario snapshot.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
