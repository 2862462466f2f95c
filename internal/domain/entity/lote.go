package entity

import "time"

// Estados de un lote.
const (
	LoteStatusActive   = "ACTIVE"   // con stock vivo (disponible o consignado)
	LoteStatusDepleted = "DEPLETED" // agotado: disponible en 0 y todo consumido
)

// Lote representa una partida física de un producto en un centro: una recepción
// de un número de lote concreto. Las cantidades son particiones disjuntas del total.
// Invariante: Available + Consigned + Consumed + Damaged + Returned == Total.
// Un lote nunca se borra; se marca DEPLETED cuando se agota.
type Lote struct {
	ID        string
	CompanyID string
	ProductID string
	CentroID  string
	LotNumber string
	Expiry    time.Time // se compara solo la fecha (sin hora)

	Total     int64
	Available int64
	Consigned int64
	Consumed  int64
	Damaged   int64
	Returned  int64

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartitionsBalanced verifica el invariante de particiones del lote.
// En lotes de bodega las particiones son disjuntas. En lotes de centro creados por
// consignación, Consigned refleja el stock recibido en consignación y se mueve en
// espejo con Available, por lo que no entra en la suma.
func (l *Lote) PartitionsBalanced() bool {
	if l.Available+l.Consigned+l.Consumed+l.Damaged+l.Returned == l.Total {
		return true
	}
	return l.Consigned == l.Available &&
		l.Available+l.Consumed+l.Damaged+l.Returned == l.Total
}

// SameExpiryDate compara la fecha de vencimiento ignorando la hora.
func (l *Lote) SameExpiryDate(other time.Time) bool {
	y1, m1, d1 := l.Expiry.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
