package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de movimientos.
const (
	TxTypeWarehouseReceipt = "WAREHOUSE_RECEIPT" // entrada a bodega central
	TxTypeConsignmentOut   = "CONSIGNMENT_OUT"   // traslado/consignación a un centro
	TxTypeConsumption      = "CONSUMPTION"       // consumo en un centro
)

// Transaccion es un registro inmutable del libro de movimientos: una por cada
// mutación del ledger. Solo se inserta; nunca se actualiza ni se borra.
type Transaccion struct {
	ID        string
	CompanyID string
	Type      string
	ProductID string
	LoteID    string
	LotNumber string
	Quantity  int64

	// Origen y destino según el tipo: recepción solo destino, consumo solo origen.
	FromCentroID string
	ToCentroID   string

	// Detalle específico del tipo: proveedor/costo en recepciones,
	// paciente/procedimiento en consumos. Serializado como JSON.
	Detail TxDetail

	CreatedBy string
	CreatedAt time.Time
}

// TxDetail agrupa los campos libres específicos de cada tipo de transacción.
type TxDetail struct {
	Supplier  string          `json:"supplier,omitempty"`
	UnitCost  decimal.Decimal `json:"unit_cost,omitempty"`
	Patient   string          `json:"patient,omitempty"`
	Procedure string          `json:"procedure,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}
