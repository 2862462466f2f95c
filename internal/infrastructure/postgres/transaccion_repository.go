package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.TransaccionRepository = (*TransaccionRepo)(nil)

// TransaccionRepo implementación del libro de movimientos sobre PostgreSQL.
// Solo inserta y lee: el libro es append-only.
type TransaccionRepo struct {
	q Querier
}

// NewTransaccionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransaccionRepository(q Querier) *TransaccionRepo {
	return &TransaccionRepo{q: q}
}

// Create persiste una transacción del libro.
func (r *TransaccionRepo) Create(t *entity.Transaccion) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	detail, err := json.Marshal(t.Detail)
	if err != nil {
		return fmt.Errorf("marshal detail: %w", err)
	}
	query := `
		INSERT INTO transacciones (id, company_id, type, product_id, lote_id, lot_number,
			quantity, from_centro_id, to_centro_id, detail, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(context.Background(), query,
		t.ID, t.CompanyID, t.Type, t.ProductID, t.LoteID, t.LotNumber,
		t.Quantity, nullIfEmpty(t.FromCentroID), nullIfEmpty(t.ToCentroID),
		detail, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaccion: %w", err)
	}
	return nil
}

func scanTransaccion(row pgx.Row) (*entity.Transaccion, error) {
	var t entity.Transaccion
	var from, to *string
	var detail []byte
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Type, &t.ProductID, &t.LoteID, &t.LotNumber,
		&t.Quantity, &from, &to, &detail, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaccion: %w", err)
	}
	if from != nil {
		t.FromCentroID = *from
	}
	if to != nil {
		t.ToCentroID = *to
	}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &t.Detail); err != nil {
			return nil, fmt.Errorf("unmarshal detail: %w", err)
		}
	}
	return &t, nil
}

const transaccionColumns = `id, company_id, type, product_id, lote_id, lot_number,
	quantity, from_centro_id, to_centro_id, detail, created_by, created_at`

// GetByID obtiene una transacción por ID.
func (r *TransaccionRepo) GetByID(id string) (*entity.Transaccion, error) {
	query := `SELECT ` + transaccionColumns + ` FROM transacciones WHERE id = $1`
	return scanTransaccion(r.q.QueryRow(context.Background(), query, id))
}

// ListByCompany lista transacciones de la empresa en un rango de fechas.
func (r *TransaccionRepo) ListByCompany(companyID string, from, to *time.Time, limit, offset int) ([]*entity.Transaccion, error) {
	query := `SELECT ` + transaccionColumns + ` FROM transacciones WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByLote lista las transacciones de un lote en orden cronológico.
func (r *TransaccionRepo) ListByLote(loteID string) ([]*entity.Transaccion, error) {
	query := `SELECT ` + transaccionColumns + ` FROM transacciones WHERE lote_id = $1 ORDER BY created_at`
	return r.list(query, loteID)
}

func (r *TransaccionRepo) list(query string, args ...any) ([]*entity.Transaccion, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transacciones: %w", err)
	}
	defer rows.Close()

	var out []*entity.Transaccion
	for rows.Next() {
		var t entity.Transaccion
		var fromID, toID *string
		var detail []byte
		if err := rows.Scan(
			&t.ID, &t.CompanyID, &t.Type, &t.ProductID, &t.LoteID, &t.LotNumber,
			&t.Quantity, &fromID, &toID, &detail, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaccion: %w", err)
		}
		if fromID != nil {
			t.FromCentroID = *fromID
		}
		if toID != nil {
			t.ToCentroID = *toID
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &t.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal detail: %w", err)
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
