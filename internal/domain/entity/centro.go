package entity

import "time"

// Tipos de ubicación física.
const (
	CentroTypeBodega = "BODEGA" // bodega central
	CentroTypeCentro = "CENTRO" // centro/sitio remoto
)

// Centro es una ubicación física de stock: la bodega central o un centro remoto.
// Cada centro mapea a un código de almacén del ERP.
type Centro struct {
	ID            string
	CompanyID     string
	Name          string
	Type          string
	WarehouseCode string // código de almacén en el ERP
	Active        bool
	CreatedAt     time.Time
}
