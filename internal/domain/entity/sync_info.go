package entity

import "time"

// Estados de sincronización con el ERP externo.
const (
	SyncStatusPending  = "PENDING"
	SyncStatusSynced   = "SYNCED"
	SyncStatusFailed   = "FAILED"
	SyncStatusRetrying = "RETRYING"
)

// Tipos de documento en el ERP externo (SAP Business One).
const (
	DocTypeStockTransfer        = "StockTransfer"
	DocTypeDeliveryNote         = "DeliveryNote"
	DocTypePurchaseDeliveryNote = "PurchaseDeliveryNote"
)

// Origen de un documento local.
const (
	OriginApp            = "APP"             // creado desde la aplicación
	OriginExternalImport = "EXTERNAL_IMPORT" // importado por conciliación
)

// SyncInfo es el bloque de sincronización embebido en Recepcion, Consignacion y
// Consumo. Registra si/cuándo el documento se empujó al ERP y el estado de reintentos.
// Retrying actúa como lock de exclusión mutua: un worker solo puede reintentar si
// logra el cambio atómico false→true sobre el estado persistido.
type SyncInfo struct {
	Pushed     bool
	Status     string
	DocEntry   int64
	DocNum     int64
	DocType    string
	SyncDate   *time.Time
	Error      string
	RetryCount int
	Retrying   bool
	// ClaimedAt marca cuándo se tomó el lock de reintento; un lock con lease
	// vencido puede ser reclamado por otro barrido (worker caído).
	ClaimedAt *time.Time
}

// NewSyncInfo devuelve el bloque inicial para un documento recién creado.
func NewSyncInfo(docType string) SyncInfo {
	return SyncInfo{Status: SyncStatusPending, DocType: docType}
}
