package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/puntoventa-api/internal/application/dto"
	"github.com/dmorales/puntoventa-api/internal/application/installment"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// InstallmentHandler maneja el crediario (protegido).
type InstallmentHandler struct {
	uc *installment.TrackerUseCase
}

// NewInstallmentHandler construye el handler.
func NewInstallmentHandler(uc *installment.TrackerUseCase) *InstallmentHandler {
	return &InstallmentHandler{uc: uc}
}

// List godoc
// @Summary      Listar cuotas agrupadas por cliente
// @Description  La búsqueda ignora mayúsculas y acentos. due_today limita a
// @Description  las cuotas que vencen hoy.
// @Tags         installments
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Nombre o documento del cliente"
// @Param        status     query  string  false  "PENDIENTE | PAGADA | VENCIDA"
// @Param        due_today  query  bool    false  "Solo cuotas que vencen hoy"
// @Success      200  {array}  dto.ClientInstallmentsGroup
// @Router       /api/installments [get]
func (h *InstallmentHandler) List(c *fiber.Ctx) error {
	filter := repository.InstallmentFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		DueToday: c.QueryBool("due_today", false),
	}
	groups, err := h.uc.ListGroupedByClient(c.UserContext(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ClientInstallmentsGroup, 0, len(groups))
	for _, g := range groups {
		group := dto.ClientInstallmentsGroup{
			ClientID:     g.ClientID,
			ClientName:   g.ClientName,
			PendingTotal: g.PendingTotal,
			OverdueTotal: g.OverdueTotal,
		}
		for _, inst := range g.Installments {
			group.Installments = append(group.Installments, toInstallmentResponse(&inst.Installment))
		}
		out = append(out, group)
	}
	return c.JSON(out)
}

// Pay godoc
// @Summary      Marcar una cuota como pagada
// @Description  Registra el abono en la caja abierta del operador si la hay.
// @Description  payment_date (YYYY-MM-DD) permite retrofechar el abono.
// @Tags         installments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la cuota"
// @Param        body  body  dto.PayInstallmentRequest  true  "Fecha y método"
// @Success      200   {object}  dto.InstallmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/installments/{id}/pay [post]
func (h *InstallmentHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayInstallmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	paymentDate := time.Now()
	if in.PaymentDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", in.PaymentDate, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "payment_date debe ser YYYY-MM-DD"})
		}
		paymentDate = parsed
	}
	inst, err := h.uc.MarkPaid(c.UserContext(), GetUserID(c), c.Params("id"), paymentDate, in.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cuota no encontrada"})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PAID", Message: "la cuota ya está pagada"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(toInstallmentResponse(inst))
}
