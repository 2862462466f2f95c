package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumoItem es una línea de consumo: un lote usado en un procedimiento.
type ConsumoItem struct {
	ProductID string
	LoteID    string
	LotNumber string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Consumo es un evento de consumo en un centro (p. ej. una cirugía). Los totales
// se recalculan siempre desde las líneas al guardar; nunca se aceptan como entrada.
type Consumo struct {
	ID        string
	CompanyID string
	CentroID  string
	Items     []ConsumoItem
	Patient   string
	Procedure string
	Origin    string

	TotalItems    int
	TotalQuantity int64
	TotalValue    decimal.Decimal

	Sync SyncInfo

	CreatedBy string
	CreatedAt time.Time
}

// ComputeTotals recalcula TotalItems, TotalQuantity y TotalValue desde Items.
func (c *Consumo) ComputeTotals() {
	c.TotalItems = len(c.Items)
	c.TotalQuantity = 0
	c.TotalValue = decimal.Zero
	for _, it := range c.Items {
		c.TotalQuantity += it.Quantity
		c.TotalValue = c.TotalValue.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
}
