// Package cart implementa el carrito de venta en memoria. No tiene efectos
// externos: el stock que acota las cantidades es el snapshot del producto en
// el momento de agregarlo, igual que el precio unitario.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

// Line es una entrada del carrito. UnitPrice y StockCap son snapshots del
// producto al agregarlo; cambios posteriores no los afectan.
type Line struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	StockCap    int
	Quantity    int
}

// Subtotal devuelve cantidad × precio unitario snapshot.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart acumula líneas en orden de inserción.
type Cart struct {
	lines []Line
}

// New crea un carrito vacío.
func New() *Cart {
	return &Cart{}
}

// Add agrega el producto con cantidad 1, o incrementa en 1 si ya está.
// Si el incremento superaría el stock disponible, no hace nada (tope
// silencioso). Un producto sin stock no entra al carrito.
func (c *Cart) Add(p entity.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			if c.lines[i].Quantity+1 > c.lines[i].StockCap {
				return
			}
			c.lines[i].Quantity++
			return
		}
	}
	if p.StockQuantity < 1 {
		return
	}
	c.lines = append(c.lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		StockCap:    p.StockQuantity,
		Quantity:    1,
	})
}

// ChangeQuantity aplica delta a la línea del producto. El resultado debe caer
// en [1, stock]; fuera de rango la cantidad queda igual. Nunca elimina una
// línea vía cero: para eso está Remove.
func (c *Cart) ChangeQuantity(productID string, delta int) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		q := c.lines[i].Quantity + delta
		if q < 1 || q > c.lines[i].StockCap {
			return
		}
		c.lines[i].Quantity = q
		return
	}
}

// Remove quita la línea del producto, incondicional.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Total suma cantidad × precio snapshot sobre todas las líneas.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines devuelve una copia de las líneas en orden de inserción.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
