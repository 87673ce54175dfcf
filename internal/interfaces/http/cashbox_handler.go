package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/puntoventa-api/internal/application/cashbox"
	"github.com/dmorales/puntoventa-api/internal/application/dto"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// CashboxHandler maneja la caja del operador autenticado (protegido).
type CashboxHandler struct {
	uc *cashbox.CashboxUseCase
}

// NewCashboxHandler construye el handler.
func NewCashboxHandler(uc *cashbox.CashboxUseCase) *CashboxHandler {
	return &CashboxHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cashbox
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenRegisterRequest  true  "Balance inicial"
// @Success      201   {object}  dto.CashRegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cashbox/open [post]
func (h *CashboxHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenRegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	register, err := h.uc.Open(c.UserContext(), GetUserID(c), in.InitialBalance)
	if err != nil {
		if errors.Is(err, domain.ErrRegisterAlreadyOpen) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTER_OPEN", Message: "el operador ya tiene una caja abierta"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el balance inicial no puede ser negativo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toRegisterResponse(register))
}

// Record godoc
// @Summary      Registrar depósito o retiro manual
// @Tags         cashbox
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransactionRequest  true  "Movimiento"
// @Success      201   {object}  dto.CashTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cashbox/transactions [post]
func (h *CashboxHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.Record(c.UserContext(), GetUserID(c), in.Type, in.Description, in.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrRegisterClosed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTER_CLOSED", Message: "el operador no tiene caja abierta"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo DEPOSITO o RETIRO y monto positivo son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

// Summary godoc
// @Summary      Resumen de la caja abierta
// @Tags         cashbox
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CashSummaryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cashbox/summary [get]
func (h *CashboxHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrRegisterClosed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTER_CLOSED", Message: "el operador no tiene caja abierta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.CashSummaryResponse{
		Register: toRegisterResponse(summary.Register),
		Balance:  summary.Balance,
	}
	for _, t := range summary.ByType {
		out.ByType = append(out.ByType, dto.TypeTotalResponse{Type: t.Type, Total: t.Total, Count: t.Count})
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Movimientos de la caja abierta
// @Tags         cashbox
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CashTransactionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cashbox/transactions [get]
func (h *CashboxHandler) Transactions(c *fiber.Ctx) error {
	txs, err := h.uc.ListTransactions(c.UserContext(), GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrRegisterClosed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTER_CLOSED", Message: "el operador no tiene caja abierta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.CashTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar caja
// @Description  Calcula el balance, registra el movimiento CIERRE y marca la
// @Description  caja CERRADA con el balance como snapshot final.
// @Tags         cashbox
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CashRegisterResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cashbox/close [post]
func (h *CashboxHandler) Close(c *fiber.Ctx) error {
	register, err := h.uc.Close(c.UserContext(), GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrRegisterClosed) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTER_CLOSED", Message: "el operador no tiene caja abierta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toRegisterResponse(register))
}

func toRegisterResponse(r *entity.CashRegister) dto.CashRegisterResponse {
	return dto.CashRegisterResponse{
		ID:             r.ID,
		OperatorID:     r.OperatorID,
		Status:         r.Status,
		InitialBalance: r.InitialBalance,
		FinalBalance:   r.FinalBalance,
		OpenedAt:       r.OpenedAt,
		ClosedAt:       r.ClosedAt,
	}
}

func toTransactionResponse(tx *entity.CashTransaction) dto.CashTransactionResponse {
	return dto.CashTransactionResponse{
		ID:            tx.ID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Description:   tx.Description,
		SaleID:        tx.SaleID,
		InstallmentID: tx.InstallmentID,
		CreatedAt:     tx.CreatedAt,
	}
}
