package postgres

import (
	"context"
	"fmt"

	"github.com/dmorales/puntoventa-api/internal/domain/entity"
	"github.com/dmorales/puntoventa-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo implementación de StockAdjustmentRepository.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create deja rastro de un ajuste manual de stock.
func (r *StockAdjustmentRepo) Create(adj *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, product_id, operator_id, delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		adj.ID, adj.ProductID, adj.OperatorID, adj.Delta, adj.Reason, adj.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// ListByProduct lista los ajustes de un producto, del más reciente al más antiguo.
func (r *StockAdjustmentRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id, product_id, operator_id, delta, reason, created_at
		FROM stock_adjustments WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.OperatorID, &a.Delta, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
