package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmorales/puntoventa-api/internal/application/dto"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta la mutación de stock junto con su registro de ajuste en
// una misma transacción.
type TxRunner interface {
	RunAdjust(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		adjRepo repository.StockAdjustmentRepository,
	) error) error
}

// ProductUseCase casos de uso CRUD para productos. El stock muta vía
// AdjustStock o el checkout, nunca por Update.
type ProductUseCase struct {
	txRunner TxRunner
	repo     repository.ProductRepository
	adjRepo  repository.StockAdjustmentRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner TxRunner, repo repository.ProductRepository, adjRepo repository.StockAdjustmentRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, adjRepo: adjRepo}
}

// Create crea un producto con código autogenerado y stock inicial.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" || in.Price.IsNegative() || in.InitialStock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Code:          generateCode(),
		Price:         in.Price,
		Category:      in.Category,
		UnitMeasure:   in.UnitMeasure,
		StockQuantity: in.InitialStock,
		MinStock:      in.MinStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// generateCode produce el código único del producto (PRD-XXXXXXXX).
func generateCode() string {
	return "PRD-" + strings.ToUpper(uuid.New().String()[:8])
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda y paginación.
func (uc *ProductUseCase) List(search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	products, err := uc.repo.List(search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(search)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(products)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, p := range products {
		out.Items = append(out.Items, *toProductResponse(p))
	}
	return out, nil
}

// ListLowStock productos en o bajo su umbral mínimo.
func (uc *ProductUseCase) ListLowStock() ([]dto.ProductResponse, error) {
	products, err := uc.repo.ListLowStock()
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update actualiza un producto. No permite modificar stock ni código.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

// AdjustStock aplica un ajuste manual. El delta negativo pasa por el mismo
// decremento condicional del checkout (ErrInsufficientStock si no alcanza).
// Mutación de stock y registro del ajuste corren en una sola transacción:
// o quedan ambos o ninguno.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, operatorID, productID string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if in.Delta == 0 || in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	var adjusted *entity.Product
	err := uc.txRunner.RunAdjust(ctx, func(
		productRepo repository.ProductRepository,
		adjRepo repository.StockAdjustmentRepository,
	) error {
		product, err := productRepo.GetByID(productID)
		if err != nil {
			return fmt.Errorf("buscar producto: %w", err)
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Delta > 0 {
			err = productRepo.IncrementStock(productID, in.Delta)
		} else {
			err = productRepo.DecrementStock(productID, -in.Delta)
		}
		if err != nil {
			return fmt.Errorf("ajustar stock: %w", err)
		}
		adj := &entity.StockAdjustment{
			ID:         uuid.New().String(),
			ProductID:  productID,
			OperatorID: operatorID,
			Delta:      in.Delta,
			Reason:     in.Reason,
			CreatedAt:  time.Now(),
		}
		if err := adjRepo.Create(adj); err != nil {
			return fmt.Errorf("registrar ajuste: %w", err)
		}
		product.StockQuantity += in.Delta
		adjusted = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(adjusted), nil
}

// ListAdjustments historial de ajustes manuales de un producto, del más
// reciente al más antiguo.
func (uc *ProductUseCase) ListAdjustments(productID string, page dto.PageRequest) ([]dto.StockAdjustmentResponse, error) {
	page.Normalize()
	product, err := uc.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	adjustments, err := uc.adjRepo.ListByProduct(productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockAdjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		out = append(out, dto.StockAdjustmentResponse{
			ID:         adj.ID,
			OperatorID: adj.OperatorID,
			Delta:      adj.Delta,
			Reason:     adj.Reason,
			CreatedAt:  adj.CreatedAt,
		})
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Code:          p.Code,
		Price:         p.Price,
		Category:      p.Category,
		UnitMeasure:   p.UnitMeasure,
		StockQuantity: p.StockQuantity,
		MinStock:      p.MinStock,
		LowStock:      p.LowStock(),
	}
}
