package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. StockQuantity nunca baja de
// cero: las salidas se aplican con un decremento condicional en el repositorio.
type Product struct {
	ID            string
	Name          string
	Code          string // único, autogenerado al crear (PRD-XXXXXXXX)
	Price         decimal.Decimal
	Category      string
	UnitMeasure   string
	StockQuantity int
	MinStock      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock indica si el producto está en o por debajo de su umbral mínimo.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinStock
}
