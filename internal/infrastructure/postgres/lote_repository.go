package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

const loteColumns = `id, company_id, product_id, centro_id, lot_number, expiry,
	total, available, consigned, consumed, damaged, returned, status, created_at, updated_at`

// LoteRepo implementación de LoteRepository sobre PostgreSQL (usable con pool o tx).
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

func scanLote(row pgx.Row) (*entity.Lote, error) {
	var l entity.Lote
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.ProductID, &l.CentroID, &l.LotNumber, &l.Expiry,
		&l.Total, &l.Available, &l.Consigned, &l.Consumed, &l.Damaged, &l.Returned,
		&l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan lote: %w", err)
	}
	return &l, nil
}

// GetByID obtiene un lote por ID. Devuelve nil sin error si no existe.
func (r *LoteRepo) GetByID(id string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes WHERE id = $1`
	return scanLote(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene un lote por ID y bloquea la fila (SELECT FOR UPDATE).
func (r *LoteRepo) GetByIDForUpdate(id string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes WHERE id = $1 FOR UPDATE`
	return scanLote(r.q.QueryRow(context.Background(), query, id))
}

// GetByKey busca por la tripleta natural (producto, número de lote, centro).
func (r *LoteRepo) GetByKey(companyID, productID, centroID, lotNumber string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes
		WHERE company_id = $1 AND product_id = $2 AND centro_id = $3 AND lot_number = $4`
	return scanLote(r.q.QueryRow(context.Background(), query, companyID, productID, centroID, lotNumber))
}

// GetByKeyForUpdate busca por la tripleta natural y bloquea la fila.
func (r *LoteRepo) GetByKeyForUpdate(companyID, productID, centroID, lotNumber string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes
		WHERE company_id = $1 AND product_id = $2 AND centro_id = $3 AND lot_number = $4
		FOR UPDATE`
	return scanLote(r.q.QueryRow(context.Background(), query, companyID, productID, centroID, lotNumber))
}

func (r *LoteRepo) list(query string, args ...any) ([]*entity.Lote, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Lote
	for rows.Next() {
		var l entity.Lote
		if err := rows.Scan(
			&l.ID, &l.CompanyID, &l.ProductID, &l.CentroID, &l.LotNumber, &l.Expiry,
			&l.Total, &l.Available, &l.Consigned, &l.Consumed, &l.Damaged, &l.Returned,
			&l.Status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lote: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ListByPair lista todos los lotes de un par (producto, centro).
func (r *LoteRepo) ListByPair(companyID, productID, centroID string) ([]*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes
		WHERE company_id = $1 AND product_id = $2 AND centro_id = $3
		ORDER BY created_at`
	return r.list(query, companyID, productID, centroID)
}

// ListByProduct lista todos los lotes de un producto en todos los centros.
func (r *LoteRepo) ListByProduct(companyID, productID string) ([]*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes
		WHERE company_id = $1 AND product_id = $2
		ORDER BY centro_id, created_at`
	return r.list(query, companyID, productID)
}

// Create persiste un lote nuevo.
func (r *LoteRepo) Create(l *entity.Lote) error {
	query := `
		INSERT INTO lotes (id, company_id, product_id, centro_id, lot_number, expiry,
			total, available, consigned, consumed, damaged, returned, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.CompanyID, l.ProductID, l.CentroID, l.LotNumber, l.Expiry,
		l.Total, l.Available, l.Consigned, l.Consumed, l.Damaged, l.Returned,
		l.Status, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create lote: lote duplicado: %w", err)
		}
		return fmt.Errorf("create lote: %w", err)
	}
	return nil
}

// Update persiste las particiones y estado de un lote existente.
func (r *LoteRepo) Update(l *entity.Lote) error {
	query := `
		UPDATE lotes SET total = $2, available = $3, consigned = $4, consumed = $5,
			damaged = $6, returned = $7, status = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.Total, l.Available, l.Consigned, l.Consumed, l.Damaged, l.Returned,
		l.Status, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lote: %w", err)
	}
	return nil
}
