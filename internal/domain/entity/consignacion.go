package entity

import "time"

// Estados de una consignación.
const (
	ConsignacionEnTransito = "EN_TRANSITO"
	ConsignacionRecibida   = "RECIBIDO"
)

// ConsignacionGracePeriod es el tiempo tras el cual una consignación EN_TRANSITO
// se considera antigua para alertas operativas. No fuerza ninguna transición.
const ConsignacionGracePeriod = 3 * 24 * time.Hour

// ConsignacionItem es una línea de la consignación: un lote con la cantidad enviada
// y la cantidad que el centro receptor confirma recibir (nil hasta la confirmación).
type ConsignacionItem struct {
	ProductID        string
	LoteID           string
	LotNumber        string
	QuantitySent     int64
	QuantityReceived *int64
}

// Consignacion es un traslado en bloque de bodega a un centro: los débitos de lote
// ya se aplicaron al crearla (fase EN_TRANSITO) y el receptor confirma cantidades
// para cerrarla (RECIBIDO). Las discrepancias enviado/recibido se registran, nunca
// se corrigen automáticamente.
type Consignacion struct {
	ID           string
	CompanyID    string
	FromCentroID string
	ToCentroID   string
	Items        []ConsignacionItem
	Status       string
	Origin       string

	Sync SyncInfo

	CreatedBy   string
	CreatedAt   time.Time
	ConfirmedBy string
	ConfirmedAt *time.Time
}

// EsAntigua indica si la consignación sigue EN_TRANSITO pasado el periodo de gracia.
func (c *Consignacion) EsAntigua(now time.Time) bool {
	return c.Status == ConsignacionEnTransito && now.Sub(c.CreatedAt) > ConsignacionGracePeriod
}

// HasDiscrepancies indica si alguna línea confirmada difiere de lo enviado.
func (c *Consignacion) HasDiscrepancies() bool {
	for _, it := range c.Items {
		if it.QuantityReceived != nil && *it.QuantityReceived != it.QuantitySent {
			return true
		}
	}
	return false
}
