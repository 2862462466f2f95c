package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// LoteRepository define el puerto de persistencia de lotes.
// Los métodos ForUpdate bloquean la fila (SELECT FOR UPDATE): toda mutación de
// particiones debe pasar por ellos dentro de una transacción para serializar
// movimientos concurrentes sobre el mismo lote.
type LoteRepository interface {
	GetByID(id string) (*entity.Lote, error)
	// GetByKey busca por la tripleta natural (producto, número de lote, centro).
	// Devuelve nil sin error si no existe.
	GetByKey(companyID, productID, centroID, lotNumber string) (*entity.Lote, error)
	GetByKeyForUpdate(companyID, productID, centroID, lotNumber string) (*entity.Lote, error)
	GetByIDForUpdate(id string) (*entity.Lote, error)
	ListByPair(companyID, productID, centroID string) ([]*entity.Lote, error)
	ListByProduct(companyID, productID string) ([]*entity.Lote, error)
	Create(l *entity.Lote) error
	Update(l *entity.Lote) error
}
