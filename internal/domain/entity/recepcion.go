package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecepcionItem es una línea de recepción: apunta al lote y a la transacción que produjo.
type RecepcionItem struct {
	ProductID     string
	LoteID        string
	LotNumber     string
	Quantity      int64
	UnitCost      decimal.Decimal
	Expiry        time.Time
	TransaccionID string
}

// Recepcion es una entrada de mercancía a la bodega central: varias líneas,
// un solo bloque de sincronización para todo el documento.
type Recepcion struct {
	ID        string
	CompanyID string
	CentroID  string // bodega que recibe
	Supplier  string
	Items     []RecepcionItem
	Origin    string

	Sync SyncInfo

	CreatedBy string
	CreatedAt time.Time
}
