package repository

import (
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
)

// SyncTracker es el puerto común de los tres documentos sincronizables
// (Recepcion, Consignacion, Consumo): mutación del bloque de sync y lock de reintento.
type SyncTracker interface {
	// UpdateSync sobrescribe el bloque de sincronización del documento.
	// Es la única vía de mutación del bloque fuera de la creación.
	UpdateSync(id string, sync entity.SyncInfo) error

	// ClaimRetry intenta tomar el lock de reintento con un compare-and-set atómico
	// (retrying false→true). También reclama locks cuyo lease venció (worker caído).
	// Devuelve true solo si este caller obtuvo el lock.
	ClaimRetry(id string, lease time.Duration) (bool, error)

	// ReleaseRetry libera el lock e incrementa retry_count, dejando el estado final.
	ReleaseRetry(id string, sync entity.SyncInfo) error

	// ListRetryable devuelve IDs con status FAILED y lock libre (o con lease vencido).
	ListRetryable(companyID string, lease time.Duration, limit int) ([]string, error)

	// ExistsByExternalDoc indica si algún documento local tiene estos identificadores
	// externos; lo usa la conciliación para clasificar documentos conocidos.
	ExistsByExternalDoc(companyID, docType string, docEntry int64) (bool, error)
}
