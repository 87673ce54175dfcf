package entity

import "time"

// Client representa un cliente del negocio. Ciclo de vida independiente:
// las ventas lo referencian pero no lo poseen.
type Client struct {
	ID        string
	Name      string
	Document  string // cédula o NIT
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
