package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/puntoventa-api/internal/application/checkout"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El memStore es el "banco de datos"; el fake TxRunner toma
// un snapshot antes del callback y lo restaura si falla, imitando el rollback.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	clients      map[string]*entity.Client
	products     map[string]*entity.Product
	sales        map[string]*entity.Sale
	items        []*entity.SaleItem
	installments []*entity.Installment
	registers    map[string]*entity.CashRegister
	cashTxs      []*entity.CashTransaction
}

func newMemStore() *memStore {
	return &memStore{
		clients:   map[string]*entity.Client{},
		products:  map[string]*entity.Product{},
		sales:     map[string]*entity.Sale{},
		registers: map[string]*entity.CashRegister{},
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.clients {
		cp := *v
		c.clients[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.sales {
		cp := *v
		c.sales[k] = &cp
	}
	for k, v := range s.registers {
		cp := *v
		c.registers[k] = &cp
	}
	c.items = append([]*entity.SaleItem(nil), s.items...)
	c.installments = append([]*entity.Installment(nil), s.installments...)
	c.cashTxs = append([]*entity.CashTransaction(nil), s.cashTxs...)
	return c
}

func (s *memStore) restore(snap *memStore) { *s = *snap }

type memClientRepo struct{ s *memStore }

func (r *memClientRepo) Create(c *entity.Client) error { r.s.clients[c.ID] = c; return nil }
func (r *memClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.s.clients[id], nil
}
func (r *memClientRepo) List(string, int, int) ([]*entity.Client, error) { return nil, nil }
func (r *memClientRepo) Count(string) (int, error)                       { return 0, nil }
func (r *memClientRepo) Update(*entity.Client) error                     { return nil }
func (r *memClientRepo) Delete(string) error                             { return nil }

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.s.products[id], nil
}
func (r *memProductRepo) GetByCode(string) (*entity.Product, error)        { return nil, nil }
func (r *memProductRepo) List(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Count(string) (int, error)                        { return 0, nil }
func (r *memProductRepo) ListLowStock() ([]*entity.Product, error)         { return nil, nil }
func (r *memProductRepo) Update(*entity.Product) error                     { return nil }
func (r *memProductRepo) Delete(string) error                              { return nil }

// DecrementStock reproduce el decremento condicional del repo real.
func (r *memProductRepo) DecrementStock(id string, qty int) error {
	p, ok := r.s.products[id]
	if !ok || qty <= 0 {
		return domain.ErrInvalidInput
	}
	if p.StockQuantity < qty {
		return domain.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	return nil
}

func (r *memProductRepo) IncrementStock(id string, qty int) error {
	if p, ok := r.s.products[id]; ok {
		p.StockQuantity += qty
	}
	return nil
}

type memSaleRepo struct{ s *memStore }

func (r *memSaleRepo) Create(sale *entity.Sale) error { r.s.sales[sale.ID] = sale; return nil }
func (r *memSaleRepo) CreateItem(item *entity.SaleItem) error {
	r.s.items = append(r.s.items, item)
	return nil
}
func (r *memSaleRepo) GetByID(id string) (*entity.Sale, error) { return r.s.sales[id], nil }
func (r *memSaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	for _, it := range r.s.items {
		if it.SaleID == saleID {
			out = append(out, it)
		}
	}
	return out, nil
}
func (r *memSaleRepo) List(int, int) ([]*entity.Sale, error)                 { return nil, nil }
func (r *memSaleRepo) ListByClient(string, int, int) ([]*entity.Sale, error) { return nil, nil }

type memInstallmentRepo struct{ s *memStore }

func (r *memInstallmentRepo) CreateBatch(installments []*entity.Installment) error {
	r.s.installments = append(r.s.installments, installments...)
	return nil
}
func (r *memInstallmentRepo) GetByID(id string) (*entity.Installment, error) {
	for _, i := range r.s.installments {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, nil
}
func (r *memInstallmentRepo) ListBySale(string) ([]*entity.Installment, error) { return nil, nil }
func (r *memInstallmentRepo) ListWithClient(repository.InstallmentFilter) ([]*repository.InstallmentWithClient, error) {
	return nil, nil
}
func (r *memInstallmentRepo) MarkPaid(string, time.Time, string) error { return nil }
func (r *memInstallmentRepo) MarkOverdueBefore(time.Time) (int64, error) {
	return 0, nil
}

type memCashRepo struct{ s *memStore }

func (r *memCashRepo) CreateRegister(reg *entity.CashRegister) error {
	r.s.registers[reg.ID] = reg
	return nil
}
func (r *memCashRepo) GetRegisterByID(id string) (*entity.CashRegister, error) {
	return r.s.registers[id], nil
}
func (r *memCashRepo) GetOpenByOperator(operatorID string) (*entity.CashRegister, error) {
	for _, reg := range r.s.registers {
		if reg.OperatorID == operatorID && reg.Status == entity.RegisterOpen {
			return reg, nil
		}
	}
	return nil, nil
}
func (r *memCashRepo) CloseRegister(id string, finalBalance decimal.Decimal, closedAt time.Time) error {
	reg, ok := r.s.registers[id]
	if !ok || reg.Status != entity.RegisterOpen {
		return domain.ErrRegisterClosed
	}
	reg.Status = entity.RegisterClosed
	reg.FinalBalance = finalBalance
	reg.ClosedAt = &closedAt
	return nil
}
func (r *memCashRepo) CreateTransaction(tx *entity.CashTransaction) error {
	r.s.cashTxs = append(r.s.cashTxs, tx)
	return nil
}
func (r *memCashRepo) ListTransactions(registerID string) ([]*entity.CashTransaction, error) {
	var out []*entity.CashTransaction
	for _, tx := range r.s.cashTxs {
		if tx.RegisterID == registerID {
			out = append(out, tx)
		}
	}
	return out, nil
}
func (r *memCashRepo) SumBalance(registerID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range r.s.cashTxs {
		if tx.RegisterID == registerID {
			sum = sum.Add(tx.Signed())
		}
	}
	return sum, nil
}
func (r *memCashRepo) SumByType(registerID string) ([]repository.TypeTotal, error) {
	totals := map[string]*repository.TypeTotal{}
	for _, tx := range r.s.cashTxs {
		if tx.RegisterID != registerID {
			continue
		}
		t, ok := totals[tx.Type]
		if !ok {
			t = &repository.TypeTotal{Type: tx.Type, Total: decimal.Zero}
			totals[tx.Type] = t
		}
		t.Total = t.Total.Add(tx.Amount)
		t.Count++
	}
	var out []repository.TypeTotal
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}
func (r *memCashRepo) RepairZeroSaleAmounts() (int64, error) { return 0, nil }

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) RunCheckout(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	installmentRepo repository.InstallmentRepository,
	productRepo repository.ProductRepository,
	cashRepo repository.CashRegisterRepository,
) error) error {
	snap := r.s.snapshot()
	if err := fn(&memSaleRepo{r.s}, &memInstallmentRepo{r.s}, &memProductRepo{r.s}, &memCashRepo{r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// failingReceipts siempre falla; el checkout debe sobrevivirlo.
type failingReceipts struct{}

func (failingReceipts) Render(*entity.Sale, *entity.Client, []checkout.ReceiptLine, []*entity.Installment) ([]byte, error) {
	return nil, errors.New("impresora apagada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	opID     = "op-1"
	clientID = "cli-1"
)

func fixture(t *testing.T, withRegister bool) (*memStore, *checkout.CheckoutUseCase) {
	t.Helper()
	s := newMemStore()
	s.clients[clientID] = &entity.Client{ID: clientID, Name: "María Pérez", Document: "123"}
	s.products["p1"] = &entity.Product{
		ID: "p1", Code: "PRD-AAAA0001", Name: "Café molido",
		Price: decimal.RequireFromString("12.50"), StockQuantity: 10,
	}
	s.products["p2"] = &entity.Product{
		ID: "p2", Code: "PRD-BBBB0002", Name: "Azúcar",
		Price: decimal.RequireFromString("4.00"), StockQuantity: 3,
	}
	if withRegister {
		s.registers["reg-1"] = &entity.CashRegister{
			ID: "reg-1", OperatorID: opID, Status: entity.RegisterOpen,
			InitialBalance: decimal.RequireFromString("100"), OpenedAt: time.Now(),
		}
	}
	uc := checkout.NewCheckoutUseCase(
		&memTxRunner{s}, &memClientRepo{s}, &memProductRepo{s}, &memSaleRepo{s}, nil,
	)
	return s, uc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_EfectivoConCajaAbierta(t *testing.T) {
	s, uc := fixture(t, true)
	tendered := dec("30.00")

	result, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:       clientID,
		Lines:          []checkout.Line{{ProductID: "p1", Quantity: 2}},
		PaymentMethod:  entity.PaymentCash,
		TenderedAmount: &tendered,
	})
	require.NoError(t, err)

	assert.True(t, result.Sale.Total.Equal(dec("25.00")), "total = 2 × 12.50")
	assert.Equal(t, entity.PaymentCash, result.Sale.PaymentMethod)
	assert.Equal(t, 8, s.products["p1"].StockQuantity, "stock descontado")
	require.NotNil(t, result.CashTx, "con caja abierta debe registrarse el movimiento VENTA")
	assert.Equal(t, entity.TxSale, result.CashTx.Type)
	// El movimiento registra lo que entra a la caja, acotado por el total.
	assert.True(t, result.CashTx.Amount.Equal(dec("25.00")))
	assert.Empty(t, result.Installments)
}

func TestCheckout_SinCajaAbierta_VentaProcedesSinMovimiento(t *testing.T) {
	s, uc := fixture(t, false)

	result, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      clientID,
		Lines:         []checkout.Line{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	assert.Nil(t, result.CashTx, "sin caja abierta no hay movimiento")
	assert.Len(t, s.sales, 1, "la venta sí queda registrada")
	assert.Empty(t, s.cashTxs)
}

func TestCheckout_CreditoRedondeaYUltimaCuotaAbsorbeElResto(t *testing.T) {
	s, uc := fixture(t, true)

	result, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      clientID,
		Lines:         []checkout.Line{{ProductID: "p1", Quantity: 2}},
		PaymentMethod: entity.PaymentCredit,
		Installments:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "CREDITO 3X", result.Sale.PaymentMethod)
	require.Len(t, result.Installments, 3)
	// 25.00 / 3 = 8.33 redondeado; la última absorbe el centavo restante.
	assert.True(t, result.Installments[0].Amount.Equal(dec("8.33")))
	assert.True(t, result.Installments[1].Amount.Equal(dec("8.33")))
	assert.True(t, result.Installments[2].Amount.Equal(dec("8.34")))

	sum := decimal.Zero
	for _, inst := range result.Installments {
		sum = sum.Add(inst.Amount)
		assert.Equal(t, entity.InstallmentPending, inst.Status)
	}
	assert.True(t, sum.Equal(result.Sale.Total), "las cuotas deben reproducir el total exacto")

	// Vencimientos a 30, 60 y 90 días.
	for k, inst := range result.Installments {
		expected := result.Sale.CreatedAt.AddDate(0, 0, 30*(k+1))
		assert.WithinDuration(t, expected, inst.DueDate, time.Second)
	}

	assert.Nil(t, result.CashTx, "el crédito no mueve la caja al vender")
	assert.Empty(t, s.cashTxs)
}

func TestCheckout_EfectivoInsuficiente_NoEscribeNada(t *testing.T) {
	s, uc := fixture(t, true)
	tendered := dec("10.00")

	_, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:       clientID,
		Lines:          []checkout.Line{{ProductID: "p1", Quantity: 2}},
		PaymentMethod:  entity.PaymentCash,
		TenderedAmount: &tendered,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Empty(t, s.sales)
	assert.Empty(t, s.items)
	assert.Equal(t, 10, s.products["p1"].StockQuantity, "el stock no debe tocarse")
}

func TestCheckout_StockInsuficiente_RevierteTodo(t *testing.T) {
	s, _ := fixture(t, true)
	// Las cantidades se validan contra el stock visto al armar el carrito, así
	// que el fallo solo puede venir de una venta concurrente que consumió el
	// stock entre el armado y la transacción. racingTxRunner simula esa
	// carrera con p2.
	input := checkout.Input{
		ClientID: clientID,
		Lines: []checkout.Line{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
		PaymentMethod: entity.PaymentCash,
	}
	uc2 := checkout.NewCheckoutUseCase(
		&racingTxRunner{s: s, drain: "p2"}, &memClientRepo{s}, &memProductRepo{s}, &memSaleRepo{s}, nil,
	)
	_, err := uc2.Checkout(context.Background(), opID, input)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Empty(t, s.sales, "la venta debe revertirse completa")
	assert.Empty(t, s.items)
	assert.Empty(t, s.cashTxs)
	assert.Equal(t, 10, s.products["p1"].StockQuantity, "el decremento de p1 debe revertirse")
}

// racingTxRunner vacía el stock de un producto justo antes del callback,
// emulando una venta concurrente que gana la carrera.
type racingTxRunner struct {
	s     *memStore
	drain string
}

func (r *racingTxRunner) RunCheckout(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	installmentRepo repository.InstallmentRepository,
	productRepo repository.ProductRepository,
	cashRepo repository.CashRegisterRepository,
) error) error {
	r.s.products[r.drain].StockQuantity = 0
	snap := r.s.snapshot()
	if err := fn(&memSaleRepo{r.s}, &memInstallmentRepo{r.s}, &memProductRepo{r.s}, &memCashRepo{r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

func TestCheckout_CantidadSobreElStock_Rechazada(t *testing.T) {
	s, uc := fixture(t, false)

	// El cliente del API no tiene carrito interactivo que le muestre el tope:
	// pedir más unidades de las que hay se rechaza, no se acota en silencio.
	_, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      clientID,
		Lines:         []checkout.Line{{ProductID: "p2", Quantity: 99}},
		PaymentMethod: entity.PaymentCash,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, s.products["p2"].StockQuantity, "sin escrituras")
	assert.Empty(t, s.sales)
}

func TestCheckout_LineasDuplicadasSumanContraElStock(t *testing.T) {
	s, uc := fixture(t, false)

	// Dos líneas del mismo producto acumulan: 2+2 sobre stock 3 se rechaza.
	_, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      clientID,
		Lines:         []checkout.Line{{ProductID: "p2", Quantity: 2}, {ProductID: "p2", Quantity: 2}},
		PaymentMethod: entity.PaymentCash,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, s.products["p2"].StockQuantity)
	assert.Empty(t, s.sales)
}

func TestCheckout_CuotasFueraDeRango_Rechazado(t *testing.T) {
	_, uc := fixture(t, false)
	for _, n := range []int{1, 37} {
		_, err := uc.Checkout(context.Background(), opID, checkout.Input{
			ClientID:      clientID,
			Lines:         []checkout.Line{{ProductID: "p1", Quantity: 1}},
			PaymentMethod: entity.PaymentCredit,
			Installments:  n,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cuotas=%d debe rechazarse", n)
	}
}

func TestCheckout_ClienteInexistente(t *testing.T) {
	_, uc := fixture(t, false)
	_, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      "no-existe",
		Lines:         []checkout.Line{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckout_ReciboFallido_NoRevierteLaVenta(t *testing.T) {
	s, _ := fixture(t, false)
	uc := checkout.NewCheckoutUseCase(
		&memTxRunner{s}, &memClientRepo{s}, &memProductRepo{s}, &memSaleRepo{s}, failingReceipts{},
	)
	result, err := uc.Checkout(context.Background(), opID, checkout.Input{
		ClientID:      clientID,
		Lines:         []checkout.Line{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: entity.PaymentTransfer,
	})
	require.NoError(t, err, "el fallo del recibo no debe tumbar el checkout")
	assert.Error(t, result.ReceiptErr)
	assert.Nil(t, result.Receipt)
	assert.Len(t, s.sales, 1, "la venta queda firme")
}
