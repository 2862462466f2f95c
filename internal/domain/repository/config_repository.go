package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// ConfigRepository define el puerto de configuración por empresa.
type ConfigRepository interface {
	// Get devuelve nil sin error si la empresa aún no tiene configuración.
	Get(companyID string) (*entity.CompanyConfig, error)
	Upsert(cfg *entity.CompanyConfig) error
}
