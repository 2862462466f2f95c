package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.InventarioRepository = (*InventarioRepo)(nil)

// InventarioRepo implementación de InventarioRepository sobre PostgreSQL.
type InventarioRepo struct {
	q Querier
}

// NewInventarioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventarioRepository(q Querier) *InventarioRepo {
	return &InventarioRepo{q: q}
}

// Get obtiene la fila agregada de un par (producto, centro).
func (r *InventarioRepo) Get(companyID, productID, centroID string) (*entity.Inventario, error) {
	query := `
		SELECT company_id, product_id, centro_id, total, available, consigned, consumed,
			damaged, returned, last_movement_date, updated_at
		FROM inventario WHERE company_id = $1 AND product_id = $2 AND centro_id = $3`
	var inv entity.Inventario
	err := r.q.QueryRow(context.Background(), query, companyID, productID, centroID).Scan(
		&inv.CompanyID, &inv.ProductID, &inv.CentroID, &inv.Total, &inv.Available,
		&inv.Consigned, &inv.Consumed, &inv.Damaged, &inv.Returned,
		&inv.LastMovementDate, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventario: %w", err)
	}
	return &inv, nil
}

// Upsert sobrescribe la fila agregada completa (por producto y centro).
func (r *InventarioRepo) Upsert(inv *entity.Inventario) error {
	query := `
		INSERT INTO inventario (company_id, product_id, centro_id, total, available,
			consigned, consumed, damaged, returned, last_movement_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (company_id, product_id, centro_id)
		DO UPDATE SET total = EXCLUDED.total, available = EXCLUDED.available,
			consigned = EXCLUDED.consigned, consumed = EXCLUDED.consumed,
			damaged = EXCLUDED.damaged, returned = EXCLUDED.returned,
			last_movement_date = EXCLUDED.last_movement_date, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		inv.CompanyID, inv.ProductID, inv.CentroID, inv.Total, inv.Available,
		inv.Consigned, inv.Consumed, inv.Damaged, inv.Returned, inv.LastMovementDate,
	)
	if err != nil {
		return fmt.Errorf("upsert inventario: %w", err)
	}
	return nil
}

// ListByCentro lista las filas agregadas de un centro.
func (r *InventarioRepo) ListByCentro(companyID, centroID string) ([]*entity.Inventario, error) {
	query := `
		SELECT company_id, product_id, centro_id, total, available, consigned, consumed,
			damaged, returned, last_movement_date, updated_at
		FROM inventario WHERE company_id = $1 AND centro_id = $2
		ORDER BY product_id`
	rows, err := r.q.Query(context.Background(), query, companyID, centroID)
	if err != nil {
		return nil, fmt.Errorf("list inventario: %w", err)
	}
	defer rows.Close()

	var out []*entity.Inventario
	for rows.Next() {
		var inv entity.Inventario
		if err := rows.Scan(
			&inv.CompanyID, &inv.ProductID, &inv.CentroID, &inv.Total, &inv.Available,
			&inv.Consigned, &inv.Consumed, &inv.Damaged, &inv.Returned,
			&inv.LastMovementDate, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventario: %w", err)
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}
