package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.RecepcionRepository = (*RecepcionRepo)(nil)

const recepcionTable = "recepciones"

// RecepcionRepo implementación de RecepcionRepository sobre PostgreSQL.
// Las líneas se guardan como JSONB; el bloque de sync en columnas sync_*.
type RecepcionRepo struct {
	q Querier
}

// NewRecepcionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecepcionRepository(q Querier) *RecepcionRepo {
	return &RecepcionRepo{q: q}
}

// Create persiste una recepción con sus líneas y bloque de sync inicial.
func (r *RecepcionRepo) Create(rec *entity.Recepcion) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO recepciones (id, company_id, centro_id, supplier, items, origin,
			` + syncColumns + `, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.q.Exec(context.Background(), query,
		rec.ID, rec.CompanyID, rec.CentroID, rec.Supplier, items, rec.Origin,
		rec.Sync.Pushed, rec.Sync.Status, rec.Sync.DocEntry, rec.Sync.DocNum, rec.Sync.DocType,
		rec.Sync.SyncDate, rec.Sync.Error, rec.Sync.RetryCount, rec.Sync.Retrying, rec.Sync.ClaimedAt,
		rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create recepcion: %w", err)
	}
	return nil
}

// GetByID obtiene una recepción por ID. Devuelve nil sin error si no existe.
func (r *RecepcionRepo) GetByID(id string) (*entity.Recepcion, error) {
	query := `
		SELECT id, company_id, centro_id, supplier, items, origin, ` + syncColumns + `,
			created_by, created_at
		FROM recepciones WHERE id = $1`
	var rec entity.Recepcion
	var items []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.CompanyID, &rec.CentroID, &rec.Supplier, &items, &rec.Origin,
		&rec.Sync.Pushed, &rec.Sync.Status, &rec.Sync.DocEntry, &rec.Sync.DocNum, &rec.Sync.DocType,
		&rec.Sync.SyncDate, &rec.Sync.Error, &rec.Sync.RetryCount, &rec.Sync.Retrying, &rec.Sync.ClaimedAt,
		&rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recepcion: %w", err)
	}
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return &rec, nil
}

// ListByCompany lista recepciones de la empresa, recientes primero.
func (r *RecepcionRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Recepcion, error) {
	query := `
		SELECT id, company_id, centro_id, supplier, items, origin, ` + syncColumns + `,
			created_by, created_at
		FROM recepciones WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recepciones: %w", err)
	}
	defer rows.Close()

	var out []*entity.Recepcion
	for rows.Next() {
		var rec entity.Recepcion
		var items []byte
		if err := rows.Scan(
			&rec.ID, &rec.CompanyID, &rec.CentroID, &rec.Supplier, &items, &rec.Origin,
			&rec.Sync.Pushed, &rec.Sync.Status, &rec.Sync.DocEntry, &rec.Sync.DocNum, &rec.Sync.DocType,
			&rec.Sync.SyncDate, &rec.Sync.Error, &rec.Sync.RetryCount, &rec.Sync.Retrying, &rec.Sync.ClaimedAt,
			&rec.CreatedBy, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recepcion: %w", err)
		}
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// UpdateSync sobrescribe el bloque de sincronización.
func (r *RecepcionRepo) UpdateSync(id string, sync entity.SyncInfo) error {
	return updateSync(r.q, recepcionTable, id, sync)
}

// ClaimRetry toma el lock de reintento (CAS atómico).
func (r *RecepcionRepo) ClaimRetry(id string, lease time.Duration) (bool, error) {
	return claimRetry(r.q, recepcionTable, id, lease)
}

// ReleaseRetry libera el lock e incrementa retry_count.
func (r *RecepcionRepo) ReleaseRetry(id string, sync entity.SyncInfo) error {
	return releaseRetry(r.q, recepcionTable, id, sync)
}

// ListRetryable lista IDs con push fallido y lock libre.
func (r *RecepcionRepo) ListRetryable(companyID string, lease time.Duration, limit int) ([]string, error) {
	return listRetryable(r.q, recepcionTable, companyID, lease, limit)
}

// ExistsByExternalDoc indica si alguna recepción fue empujada con esos identificadores.
func (r *RecepcionRepo) ExistsByExternalDoc(companyID, docType string, docEntry int64) (bool, error) {
	return existsByExternalDoc(r.q, recepcionTable, companyID, docType, docEntry)
}
