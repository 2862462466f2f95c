package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// CentroRepository define el puerto de ubicaciones (bodega central y centros).
type CentroRepository interface {
	GetByID(id string) (*entity.Centro, error)
	ListByCompany(companyID string) ([]*entity.Centro, error)
}
