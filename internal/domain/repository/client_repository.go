package repository

import "github.com/dmorales/puntoventa-api/internal/domain/entity"

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	List(search string, limit, offset int) ([]*entity.Client, error)
	Count(search string) (int, error)
	Update(client *entity.Client) error
	Delete(id string) error
}
