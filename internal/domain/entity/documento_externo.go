package entity

import "time"

// Estados de resolución de un documento externo, fijados por el operador.
const (
	ExternalDocDiscovered   = "DISCOVERED"
	ExternalDocAcknowledged = "ACKNOWLEDGED"
	ExternalDocImported     = "IMPORTED"
	ExternalDocIgnored      = "IGNORED"
)

// DocumentoExterno es un documento hallado en el ERP durante la conciliación sin
// registro local de origen (creado por fuera de la aplicación). El upsert por
// (DocType, DocEntry) garantiza que re-ejecutar la conciliación no duplique.
type DocumentoExterno struct {
	ID        string
	CompanyID string
	DocType   string
	DocEntry  int64
	DocNum    int64
	DocDate   time.Time
	Payload   string // snapshot crudo del documento tal como lo devolvió el ERP

	Resolution   string
	DiscoveredAt time.Time
	UpdatedAt    time.Time
}
