package entity

import "time"

// StockAdjustment deja rastro de un ajuste manual de stock (compra, merma,
// corrección de conteo). El delta negativo pasa por el mismo decremento
// condicional que el checkout.
type StockAdjustment struct {
	ID         string
	ProductID  string
	OperatorID string
	Delta      int
	Reason     string
	CreatedAt  time.Time
}
