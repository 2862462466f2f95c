package repository

import (
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
)

// TransaccionRepository define el puerto del libro de movimientos (append-only).
type TransaccionRepository interface {
	Create(t *entity.Transaccion) error
	GetByID(id string) (*entity.Transaccion, error)
	ListByCompany(companyID string, from, to *time.Time, limit, offset int) ([]*entity.Transaccion, error)
	ListByLote(loteID string) ([]*entity.Transaccion, error)
}
