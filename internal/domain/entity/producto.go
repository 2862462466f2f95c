package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto es un dispositivo médico (guía, stent) identificado por su código de
// artículo en el ERP.
type Producto struct {
	ID          string
	CompanyID   string
	ItemCode    string // código de artículo en el ERP
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Active      bool
	CreatedAt   time.Time
}
