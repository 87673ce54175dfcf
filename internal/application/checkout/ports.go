package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta el checkout dentro de una transacción: venta, items,
// cuotas, stock y movimiento de caja se confirman todos o ninguno.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		installmentRepo repository.InstallmentRepository,
		productRepo repository.ProductRepository,
		cashRepo repository.CashRegisterRepository,
	) error) error
}

// ReceiptLine línea del recibo (nombre ya resuelto, montos snapshot).
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// ReceiptGenerator produce el recibo imprimible de una venta. Corre después
// del commit: su fallo no revierte la venta.
type ReceiptGenerator interface {
	Render(sale *entity.Sale, client *entity.Client, lines []ReceiptLine, installments []*entity.Installment) ([]byte, error)
}
