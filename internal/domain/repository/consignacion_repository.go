package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// ConsignacionRepository define el puerto de consignaciones.
type ConsignacionRepository interface {
	SyncTracker
	Create(c *entity.Consignacion) error
	GetByID(id string) (*entity.Consignacion, error)
	GetByIDForUpdate(id string) (*entity.Consignacion, error)
	// Update persiste estado, líneas confirmadas y datos de confirmación.
	Update(c *entity.Consignacion) error
	ListByCompany(companyID, status string, limit, offset int) ([]*entity.Consignacion, error)
}
