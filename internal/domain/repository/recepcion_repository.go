package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// RecepcionRepository define el puerto de entradas de mercancía.
type RecepcionRepository interface {
	SyncTracker
	Create(r *entity.Recepcion) error
	GetByID(id string) (*entity.Recepcion, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Recepcion, error)
}
