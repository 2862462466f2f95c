package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.CentroRepository = (*CentroRepo)(nil)

// CentroRepo implementación de CentroRepository sobre PostgreSQL.
type CentroRepo struct {
	q Querier
}

// NewCentroRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCentroRepository(q Querier) *CentroRepo {
	return &CentroRepo{q: q}
}

// GetByID obtiene un centro por ID. Devuelve nil sin error si no existe.
func (r *CentroRepo) GetByID(id string) (*entity.Centro, error) {
	query := `SELECT id, company_id, name, type, warehouse_code, active, created_at
		FROM centros WHERE id = $1`
	var c entity.Centro
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.WarehouseCode, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get centro: %w", err)
	}
	return &c, nil
}

// ListByCompany lista los centros de la empresa.
func (r *CentroRepo) ListByCompany(companyID string) ([]*entity.Centro, error) {
	query := `SELECT id, company_id, name, type, warehouse_code, active, created_at
		FROM centros WHERE company_id = $1 ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list centros: %w", err)
	}
	defer rows.Close()

	var out []*entity.Centro
	for rows.Next() {
		var c entity.Centro
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.WarehouseCode, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan centro: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
