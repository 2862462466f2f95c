package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// ProductoRepository define el puerto de productos (dispositivos).
type ProductoRepository interface {
	GetByID(id string) (*entity.Producto, error)
	GetByItemCode(companyID, itemCode string) (*entity.Producto, error)
	ListByCompany(companyID string) ([]*entity.Producto, error)
}
