package cashbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake en memoria del repositorio de caja.
// ──────────────────────────────────────────────────────────────────────────────

type memCashRepo struct {
	registers map[string]*entity.CashRegister
	txs       []*entity.CashTransaction
}

func newMemCashRepo() *memCashRepo {
	return &memCashRepo{registers: map[string]*entity.CashRegister{}}
}

func (r *memCashRepo) CreateRegister(reg *entity.CashRegister) error {
	for _, existing := range r.registers {
		if existing.OperatorID == reg.OperatorID && existing.Status == entity.RegisterOpen {
			return domain.ErrRegisterAlreadyOpen
		}
	}
	r.registers[reg.ID] = reg
	return nil
}

func (r *memCashRepo) GetRegisterByID(id string) (*entity.CashRegister, error) {
	return r.registers[id], nil
}

func (r *memCashRepo) GetOpenByOperator(operatorID string) (*entity.CashRegister, error) {
	for _, reg := range r.registers {
		if reg.OperatorID == operatorID && reg.Status == entity.RegisterOpen {
			return reg, nil
		}
	}
	return nil, nil
}

func (r *memCashRepo) CloseRegister(id string, finalBalance decimal.Decimal, closedAt time.Time) error {
	reg, ok := r.registers[id]
	if !ok || reg.Status != entity.RegisterOpen {
		return domain.ErrRegisterClosed
	}
	reg.Status = entity.RegisterClosed
	reg.FinalBalance = finalBalance
	reg.ClosedAt = &closedAt
	return nil
}

func (r *memCashRepo) CreateTransaction(tx *entity.CashTransaction) error {
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memCashRepo) ListTransactions(registerID string) ([]*entity.CashTransaction, error) {
	var out []*entity.CashTransaction
	for _, tx := range r.txs {
		if tx.RegisterID == registerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memCashRepo) SumBalance(registerID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range r.txs {
		if tx.RegisterID == registerID {
			sum = sum.Add(tx.Signed())
		}
	}
	return sum, nil
}

func (r *memCashRepo) SumByType(registerID string) ([]repository.TypeTotal, error) {
	totals := map[string]*repository.TypeTotal{}
	for _, tx := range r.txs {
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

type memTxRunner struct{ repo *memCashRepo }

func (r *memTxRunner) RunCashbox(ctx context.Context, fn func(cashRepo repository.CashRegisterRepository) error) error {
	return fn(r.repo)
}

func newUseCase() (*memCashRepo, *cashbox.CashboxUseCase) {
	repo := newMemCashRepo()
	return repo, cashbox.NewCashboxUseCase(&memTxRunner{repo}, repo)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const opID = "op-1"

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestOpen_RegistraAperturaPorElBalanceInicial(t *testing.T) {
	repo, uc := newUseCase()

	register, err := uc.Open(context.Background(), opID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, entity.RegisterOpen, register.Status)

	txs, _ := repo.ListTransactions(register.ID)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TxOpening, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(dec("100")))
}

func TestOpen_SegundaAperturaDelMismoOperador_Rechazada(t *testing.T) {
	_, uc := newUseCase()

	_, err := uc.Open(context.Background(), opID, dec("100"))
	require.NoError(t, err)

	_, err = uc.Open(context.Background(), opID, dec("50"))
	assert.ErrorIs(t, err, domain.ErrRegisterAlreadyOpen)
}

func TestOpen_BalanceNegativo_Rechazado(t *testing.T) {
	_, uc := newUseCase()
	_, err := uc.Open(context.Background(), opID, dec("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecord_DepositoYRetiroPesanConSigno(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()

	_, err := uc.Open(ctx, opID, dec("100"))
	require.NoError(t, err)

	_, err = uc.Record(ctx, opID, entity.TxDeposit, "Fondo extra", dec("50"))
	require.NoError(t, err)
	_, err = uc.Record(ctx, opID, entity.TxWithdrawal, "Pago proveedor", dec("20"))
	require.NoError(t, err)

	balance, err := uc.CurrentBalance(ctx, opID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("130")), "100 + 50 - 20 = 130, obtuvo %s", balance)
}

func TestRecord_SinCajaAbierta_Rechazado(t *testing.T) {
	_, uc := newUseCase()
	_, err := uc.Record(context.Background(), opID, entity.TxDeposit, "x", dec("10"))
	assert.ErrorIs(t, err, domain.ErrRegisterClosed)
}

func TestRecord_TipoNoManual_Rechazado(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()
	_, err := uc.Open(ctx, opID, dec("100"))
	require.NoError(t, err)

	for _, txType := range []string{entity.TxSale, entity.TxOpening, entity.TxClosing, "OTRO"} {
		_, err := uc.Record(ctx, opID, txType, "x", dec("10"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo %s no debe aceptarse manualmente", txType)
	}
}

func TestClose_EscribeCierrePositivoYSnapshotDelBalance(t *testing.T) {
	repo, uc := newUseCase()
	ctx := context.Background()

	register, err := uc.Open(ctx, opID, dec("100"))
	require.NoError(t, err)
	_, err = uc.Record(ctx, opID, entity.TxWithdrawal, "Retiro", dec("30"))
	require.NoError(t, err)

	closed, err := uc.Close(ctx, opID)
	require.NoError(t, err)
	assert.Equal(t, entity.RegisterClosed, closed.Status)
	assert.True(t, closed.FinalBalance.Equal(dec("70")))
	require.NotNil(t, closed.ClosedAt)

	// El CIERRE se registra en positivo por el monto del balance: la suma de
	// movimientos de una caja cerrada NO da cero, el cierre duplica el balance.
	txs, _ := repo.ListTransactions(register.ID)
	var closing *entity.CashTransaction
	for _, tx := range txs {
		if tx.Type == entity.TxClosing {
			closing = tx
		}
	}
	require.NotNil(t, closing)
	assert.True(t, closing.Amount.Equal(dec("70")))
	assert.True(t, closing.Signed().Equal(dec("70")), "CIERRE no se niega en el ledger")

	sum, _ := repo.SumBalance(register.ID)
	assert.True(t, sum.Equal(dec("140")), "tras cerrar, la suma incluye el CIERRE en positivo")
}

func TestClose_SinCajaAbierta_Rechazado(t *testing.T) {
	_, uc := newUseCase()
	_, err := uc.Close(context.Background(), opID)
	assert.ErrorIs(t, err, domain.ErrRegisterClosed)
}

func TestGetSummary_AgrupaPorTipo(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()

	_, err := uc.Open(ctx, opID, dec("100"))
	require.NoError(t, err)
	_, err = uc.Record(ctx, opID, entity.TxDeposit, "a", dec("10"))
	require.NoError(t, err)
	_, err = uc.Record(ctx, opID, entity.TxDeposit, "b", dec("15"))
	require.NoError(t, err)

	summary, err := uc.GetSummary(ctx, opID)
	require.NoError(t, err)
	assert.True(t, summary.Balance.Equal(dec("125")))

	byType := map[string]decimal.Decimal{}
	counts := map[string]int{}
	for _, tt := range summary.ByType {
		byType[tt.Type] = tt.Total
		counts[tt.Type] = tt.Count
	}
	assert.True(t, byType[entity.TxDeposit].Equal(dec("25")))
	assert.Equal(t, 2, counts[entity.TxDeposit])
	assert.True(t, byType[entity.TxOpening].Equal(dec("100")))
}
