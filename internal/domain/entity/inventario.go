package entity

import "time"

// Inventario es la vista agregada de stock por (producto, centro): la suma de las
// particiones de todos los lotes del par. Derivada, no autoritativa; el agregador
// la reescribe completa en cada movimiento (nunca contadores incrementales).
type Inventario struct {
	CompanyID string
	ProductID string
	CentroID  string

	Total     int64
	Available int64
	Consigned int64
	Consumed  int64
	Damaged   int64
	Returned  int64

	LastMovementDate time.Time
	UpdatedAt        time.Time
}
