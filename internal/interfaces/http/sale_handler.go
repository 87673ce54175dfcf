package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/puntoventa-api/internal/application/checkout"
	"github.com/dmorales/puntoventa-api/internal/application/dto"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// SaleHandler maneja el checkout y la consulta de ventas (protegido).
type SaleHandler struct {
	uc *checkout.CheckoutUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *checkout.CheckoutUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Checkout godoc
// @Summary      Registrar una venta
// @Description  Crea la venta con sus items, descuenta stock, genera cuotas si
// @Description  es a crédito y registra el movimiento de caja del operador.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito y pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := checkout.Input{
		ClientID:       in.ClientID,
		PaymentMethod:  in.PaymentMethod,
		TenderedAmount: in.TenderedAmount,
		Installments:   in.Installments,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, checkout.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	result, err := h.uc.Checkout(c.UserContext(), GetUserID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente o producto no encontrado"})
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_CART", Message: "el carrito está vacío"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "venta inválida: revise método de pago, cuotas y líneas"})
		case errors.Is(err, domain.ErrInsufficientPayment):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_PAYMENT", Message: "el monto entregado es menor al total"})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(result))
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, items, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.SaleResponse{
		ID:            sale.ID,
		ClientID:      sale.ClientID,
		OperatorID:    sale.OperatorID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		CreatedAt:     sale.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, toSaleItemResponse(it))
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "Filtrar por cliente"
// @Param        limit      query  int     false  "Límite"   default(20)
// @Param        offset     query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	sales, err := h.uc.ListSales(c.UserContext(), c.Query("client_id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, dto.SaleResponse{
			ID:            s.ID,
			ClientID:      s.ClientID,
			OperatorID:    s.OperatorID,
			Total:         s.Total,
			PaymentMethod: s.PaymentMethod,
			CreatedAt:     s.CreatedAt,
		})
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar recibo PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.RenderReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}

func toSaleResponse(r *checkout.Result) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:            r.Sale.ID,
		ClientID:      r.Sale.ClientID,
		OperatorID:    r.Sale.OperatorID,
		Total:         r.Sale.Total,
		PaymentMethod: r.Sale.PaymentMethod,
		CreatedAt:     r.Sale.CreatedAt,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, toSaleItemResponse(it))
	}
	for _, inst := range r.Installments {
		out.Installments = append(out.Installments, toInstallmentResponse(inst))
	}
	if r.ReceiptErr != nil {
		out.ReceiptError = r.ReceiptErr.Error()
	}
	return out
}

func toSaleItemResponse(it *entity.SaleItem) dto.SaleItemResponse {
	return dto.SaleItemResponse{
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
		Subtotal:  it.Subtotal(),
	}
}

func toInstallmentResponse(inst *entity.Installment) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		ID:            inst.ID,
		SaleID:        inst.SaleID,
		Number:        inst.Number,
		DueDate:       inst.DueDate,
		Amount:        inst.Amount,
		Status:        inst.Status,
		PaidAt:        inst.PaidAt,
		PaymentMethod: inst.PaymentMethod,
	}
}
