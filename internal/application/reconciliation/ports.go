package reconciliation

import (
	"context"
	"time"
)

// ERPDocument es un documento tal como lo reporta el ERP externo.
type ERPDocument struct {
	DocType  string
	DocEntry int64
	DocNum   int64
	DocDate  time.Time
	Payload  string // JSON crudo devuelto por el ERP
}

// DocumentSource define el puerto de lectura de documentos del ERP para la
// conciliación. Solo lectura: el motor nunca escribe en el ERP.
type DocumentSource interface {
	Ping(ctx context.Context, companyID string) error
	GetDocumentsSince(ctx context.Context, companyID string, docTypes []string, since time.Time) ([]ERPDocument, error)
}
