package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/application/cart"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// Límites del crédito en cuotas.
const (
	MinInstallments = 2
	MaxInstallments = 36
	installmentDays = 30 // días entre vencimientos
)

// CheckoutUseCase orquesta la venta: carrito + cliente + pago producen la
// venta, sus items, las cuotas si aplica, el descuento de stock y el
// movimiento de caja, todo dentro de una transacción.
type CheckoutUseCase struct {
	txRunner    TxRunner
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	receipts    ReceiptGenerator // nil = sin recibo
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(
	txRunner TxRunner,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	receipts ReceiptGenerator,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txRunner:    txRunner,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		receipts:    receipts,
	}
}

// Line una línea de venta solicitada.
type Line struct {
	ProductID string
	Quantity  int
}

// Input entrada del checkout. El operador viene siempre como parámetro
// explícito, nunca de estado ambiente.
type Input struct {
	ClientID       string
	Lines          []Line
	PaymentMethod  string
	TenderedAmount *decimal.Decimal // solo EFECTIVO; nil = monto exacto
	Installments   int              // > 0 activa crédito
}

// Result lo producido por un checkout exitoso.
type Result struct {
	Sale         *entity.Sale
	Items        []*entity.SaleItem
	Installments []*entity.Installment
	CashTx       *entity.CashTransaction
	Receipt      []byte
	// ReceiptErr es el fallo del recibo post-commit; la venta ya quedó firme.
	ReceiptErr error
}

// Checkout ejecuta la venta para el operador dado. Valida todo antes de
// escribir; luego corre la secuencia en una transacción, envolviendo el error
// de cada etapa con su nombre.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, operatorID string, in Input) (*Result, error) {
	if operatorID == "" || in.ClientID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer:
		if in.Installments > 0 {
			return nil, domain.ErrInvalidInput
		}
	case entity.PaymentCredit:
		if in.Installments < MinInstallments || in.Installments > MaxInstallments {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	// Construir el carrito con snapshots de precio y stock. A diferencia del
	// carrito interactivo, acá no hay operador mirando la pantalla: una
	// cantidad que el stock no cubre se rechaza en vez de acotarse en
	// silencio.
	c := cart.New()
	lineProducts := make(map[string]*entity.Product, len(in.Lines))
	requested := make(map[string]int, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID == "" || line.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("buscar producto: %w", err)
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		requested[product.ID] += line.Quantity
		if requested[product.ID] > product.StockQuantity {
			return nil, fmt.Errorf("producto %s: %w", product.Code, domain.ErrInsufficientStock)
		}
		lineProducts[product.ID] = product
		c.Add(*product)
		c.ChangeQuantity(product.ID, line.Quantity-1)
	}
	if c.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	total := c.Total()
	if in.PaymentMethod == entity.PaymentCash && in.TenderedAmount != nil &&
		in.TenderedAmount.LessThan(total) {
		return nil, domain.ErrInsufficientPayment
	}

	now := time.Now()
	method := in.PaymentMethod
	if method == entity.PaymentCredit {
		method = entity.CreditTag(in.Installments)
	}
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		ClientID:      client.ID,
		OperatorID:    operatorID,
		Total:         total,
		PaymentMethod: method,
		CreatedAt:     now,
	}

	result := &Result{Sale: sale}
	err = uc.txRunner.RunCheckout(ctx, func(
		saleRepo repository.SaleRepository,
		installmentRepo repository.InstallmentRepository,
		productRepo repository.ProductRepository,
		cashRepo repository.CashRegisterRepository,
	) error {
		if err := saleRepo.Create(sale); err != nil {
			return fmt.Errorf("registrar venta: %w", err)
		}

		for _, l := range c.Lines() {
			item := &entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return fmt.Errorf("registrar items: %w", err)
			}
			result.Items = append(result.Items, item)
		}

		if in.Installments > 0 {
			result.Installments = buildInstallments(sale, in.Installments, now)
			if err := installmentRepo.CreateBatch(result.Installments); err != nil {
				return fmt.Errorf("generar cuotas: %w", err)
			}
		}

		// Decremento condicional: el repo falla con ErrInsufficientStock si el
		// stock resultante quedaría negativo (sin read-then-write).
		for _, l := range c.Lines() {
			if err := productRepo.DecrementStock(l.ProductID, l.Quantity); err != nil {
				return fmt.Errorf("descontar stock de %s: %w", lineProducts[l.ProductID].Code, err)
			}
		}

		if in.Installments == 0 {
			cashTx, err := uc.recordSaleTransaction(cashRepo, sale, client, in, now)
			if err != nil {
				return fmt.Errorf("registrar movimiento de caja: %w", err)
			}
			result.CashTx = cashTx
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.receipts != nil {
		lines := make([]ReceiptLine, 0, len(result.Items))
		for _, l := range c.Lines() {
			lines = append(lines, ReceiptLine{
				Name:      l.ProductName,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Subtotal:  l.Subtotal(),
			})
		}
		result.Receipt, result.ReceiptErr = uc.receipts.Render(sale, client, lines, result.Installments)
	}
	return result, nil
}

// recordSaleTransaction inserta el movimiento VENTA si el operador tiene caja
// abierta. Sin caja abierta la venta procede sin movimiento.
func (uc *CheckoutUseCase) recordSaleTransaction(
	cashRepo repository.CashRegisterRepository,
	sale *entity.Sale,
	client *entity.Client,
	in Input,
	now time.Time,
) (*entity.CashTransaction, error) {
	register, err := cashRepo.GetOpenByOperator(sale.OperatorID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, nil
	}
	amount := sale.Total
	if in.PaymentMethod == entity.PaymentCash && in.TenderedAmount != nil {
		amount = decimal.Min(*in.TenderedAmount, sale.Total)
	}
	saleID := sale.ID
	cashTx := &entity.CashTransaction{
		ID:          uuid.New().String(),
		RegisterID:  register.ID,
		SaleID:      &saleID,
		Description: fmt.Sprintf("Venta %s - %s", sale.ShortRef(), client.Name),
		Amount:      amount,
		Type:        entity.TxSale,
		CreatedAt:   now,
	}
	if err := cashRepo.CreateTransaction(cashTx); err != nil {
		return nil, err
	}
	return cashTx, nil
}

// buildInstallments divide el total en n cuotas iguales redondeadas a dos
// decimales; la última absorbe el resto para que la suma reproduzca el total
// exacto. Vencen a 30, 60, ..., 30n días de la venta.
func buildInstallments(sale *entity.Sale, n int, now time.Time) []*entity.Installment {
	base := sale.Total.Div(decimal.NewFromInt(int64(n))).Round(2)
	installments := make([]*entity.Installment, 0, n)
	for k := 1; k <= n; k++ {
		amount := base
		if k == n {
			amount = sale.Total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
		}
		installments = append(installments, &entity.Installment{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			Number:    k,
			DueDate:   now.AddDate(0, 0, installmentDays*k),
			Amount:    amount,
			Status:    entity.InstallmentPending,
			CreatedAt: now,
		})
	}
	return installments
}

// ListSales lista ventas recientes; con clientID filtra por cliente.
func (uc *CheckoutUseCase) ListSales(ctx context.Context, clientID string, limit, offset int) ([]*entity.Sale, error) {
	if clientID != "" {
		return uc.saleRepo.ListByClient(clientID, limit, offset)
	}
	return uc.saleRepo.List(limit, offset)
}

// GetSale obtiene una venta con items y cuotas (para consulta y recibo).
func (uc *CheckoutUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, []*entity.SaleItem, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if sale == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItemsBySaleID(id)
	if err != nil {
		return nil, nil, err
	}
	return sale, items, nil
}

// RenderReceipt regenera el recibo de una venta ya registrada.
func (uc *CheckoutUseCase) RenderReceipt(ctx context.Context, saleID string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, domain.ErrNotFound
	}
	sale, items, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	client, err := uc.clientRepo.GetByID(sale.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	lines := make([]ReceiptLine, 0, len(items))
	for _, it := range items {
		name := it.ProductID
		if p, err := uc.productRepo.GetByID(it.ProductID); err == nil && p != nil {
			name = p.Name
		}
		lines = append(lines, ReceiptLine{
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	return uc.receipts.Render(sale, client, lines, nil)
}
