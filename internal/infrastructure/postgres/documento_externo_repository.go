package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.DocumentoExternoRepository = (*DocumentoExternoRepo)(nil)

// DocumentoExternoRepo implementación sobre PostgreSQL.
type DocumentoExternoRepo struct {
	q Querier
}

// NewDocumentoExternoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentoExternoRepository(q Querier) *DocumentoExternoRepo {
	return &DocumentoExternoRepo{q: q}
}

// Upsert inserta o actualiza por (company_id, doc_type, doc_entry). Devuelve true
// solo en inserción nueva (xmax = 0 tras el conflicto): así la conciliación cuenta
// hallazgos reales y re-ejecutar no los infla. La resolución existente se respeta.
func (r *DocumentoExternoRepo) Upsert(d *entity.DocumentoExterno) (bool, error) {
	query := `
		INSERT INTO documentos_externos (id, company_id, doc_type, doc_entry, doc_num,
			doc_date, payload, resolution, discovered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (company_id, doc_type, doc_entry)
		DO UPDATE SET doc_num = EXCLUDED.doc_num, doc_date = EXCLUDED.doc_date,
			payload = EXCLUDED.payload, updated_at = now()
		RETURNING (xmax = 0)`
	var inserted bool
	err := r.q.QueryRow(context.Background(), query,
		d.ID, d.CompanyID, d.DocType, d.DocEntry, d.DocNum,
		d.DocDate, d.Payload, d.Resolution, d.DiscoveredAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert documento externo: %w", err)
	}
	return inserted, nil
}

const documentoExternoColumns = `id, company_id, doc_type, doc_entry, doc_num, doc_date,
	payload, resolution, discovered_at, updated_at`

// GetByID obtiene un documento externo por ID. Devuelve nil sin error si no existe.
func (r *DocumentoExternoRepo) GetByID(id string) (*entity.DocumentoExterno, error) {
	query := `SELECT ` + documentoExternoColumns + ` FROM documentos_externos WHERE id = $1`
	var d entity.DocumentoExterno
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.CompanyID, &d.DocType, &d.DocEntry, &d.DocNum, &d.DocDate,
		&d.Payload, &d.Resolution, &d.DiscoveredAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get documento externo: %w", err)
	}
	return &d, nil
}

// List lista documentos externos de la empresa, opcionalmente por resolución.
func (r *DocumentoExternoRepo) List(companyID, resolution string, limit, offset int) ([]*entity.DocumentoExterno, error) {
	query := `SELECT ` + documentoExternoColumns + ` FROM documentos_externos WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if resolution != "" {
		query += fmt.Sprintf(" AND resolution = $%d", pos)
		args = append(args, resolution)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY discovered_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documentos externos: %w", err)
	}
	defer rows.Close()

	var out []*entity.DocumentoExterno
	for rows.Next() {
		var d entity.DocumentoExterno
		if err := rows.Scan(
			&d.ID, &d.CompanyID, &d.DocType, &d.DocEntry, &d.DocNum, &d.DocDate,
			&d.Payload, &d.Resolution, &d.DiscoveredAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan documento externo: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// UpdateResolution fija la resolución del operador.
func (r *DocumentoExternoRepo) UpdateResolution(id, resolution string) error {
	query := `UPDATE documentos_externos SET resolution = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, resolution)
	if err != nil {
		return fmt.Errorf("update resolution: %w", err)
	}
	return nil
}
