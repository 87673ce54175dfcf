package repository

import "github.com/dmorales/puntoventa-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product.
// DecrementStock es condicional: falla con domain.ErrInsufficientStock si el
// stock resultante quedaría negativo (sin read-then-write).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	List(search string, limit, offset int) ([]*entity.Product, error)
	Count(search string) (int, error)
	ListLowStock() ([]*entity.Product, error)
	Update(product *entity.Product) error
	Delete(id string) error
	DecrementStock(id string, qty int) error
	IncrementStock(id string, qty int) error
}

// StockAdjustmentRepository persiste el rastro de ajustes manuales de stock.
type StockAdjustmentRepository interface {
	Create(adj *entity.StockAdjustment) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
