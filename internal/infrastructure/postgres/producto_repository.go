package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

const productoColumns = `id, company_id, item_code, name, description, unit_price, active, created_at`

// ProductoRepo implementación de ProductoRepository sobre PostgreSQL.
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

func scanProducto(row pgx.Row) (*entity.Producto, error) {
	var p entity.Producto
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.ItemCode, &p.Name, &p.Description,
		&p.UnitPrice, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan producto: %w", err)
	}
	return &p, nil
}

// GetByID obtiene un producto por ID. Devuelve nil sin error si no existe.
func (r *ProductoRepo) GetByID(id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1`
	return scanProducto(r.q.QueryRow(context.Background(), query, id))
}

// GetByItemCode obtiene un producto por su código de artículo en el ERP.
func (r *ProductoRepo) GetByItemCode(companyID, itemCode string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE company_id = $1 AND item_code = $2`
	return scanProducto(r.q.QueryRow(context.Background(), query, companyID, itemCode))
}

// ListByCompany lista los productos de la empresa.
func (r *ProductoRepo) ListByCompany(companyID string) ([]*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE company_id = $1 ORDER BY item_code`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()

	var out []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.ItemCode, &p.Name, &p.Description,
			&p.UnitPrice, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
