package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// CompanyRepository define el puerto del directorio de empresas (tenants).
type CompanyRepository interface {
	GetByID(id string) (*entity.Company, error)
	ListActive() ([]*entity.Company, error)
}
