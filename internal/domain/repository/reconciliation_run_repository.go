package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// ReconciliationRunRepository define el puerto del historial de ejecuciones.
// Cada ejecución escribe su propio registro; los registros previos no se mutan.
type ReconciliationRunRepository interface {
	Create(r *entity.ReconciliationRun) error
	// Update solo toca el registro de la propia ejecución (estado terminal y stats).
	Update(r *entity.ReconciliationRun) error
	GetByID(id string) (*entity.ReconciliationRun, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.ReconciliationRun, error)
}
