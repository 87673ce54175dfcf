package repository

import "github.com/dmorales/puntoventa-api/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale y sus items.
// Las ventas no tienen update ni delete: son inmutables.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error)
	List(limit, offset int) ([]*entity.Sale, error)
	ListByClient(clientID string, limit, offset int) ([]*entity.Sale, error)
}
