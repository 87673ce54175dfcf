package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de producto. El código se autogenera.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	UnitMeasure  string          `json:"unit_measure"`
	InitialStock int             `json:"initial_stock"`
	MinStock     int             `json:"min_stock"`
}

// UpdateProductRequest actualización parcial. No toca stock ni código.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	UnitMeasure *string          `json:"unit_measure"`
	MinStock    *int             `json:"min_stock"`
}

// AdjustStockRequest ajuste manual de stock (positivo = entrada, negativo = salida).
type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// ProductResponse representación de salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	UnitMeasure   string          `json:"unit_measure"`
	StockQuantity int             `json:"stock_quantity"`
	MinStock      int             `json:"min_stock"`
	LowStock      bool            `json:"low_stock"`
}

// StockAdjustmentResponse un ajuste manual del historial de un producto.
type StockAdjustmentResponse struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operator_id"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductListResponse listado paginado.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
