package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// ConsumoRepository define el puerto de consumos.
type ConsumoRepository interface {
	SyncTracker
	Create(c *entity.Consumo) error
	GetByID(id string) (*entity.Consumo, error)
	ListByCentro(companyID, centroID string, limit, offset int) ([]*entity.Consumo, error)
}
