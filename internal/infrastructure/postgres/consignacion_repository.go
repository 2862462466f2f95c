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

var _ repository.ConsignacionRepository = (*ConsignacionRepo)(nil)

const consignacionTable = "consignaciones"

const consignacionSelect = `
	SELECT id, company_id, from_centro_id, to_centro_id, items, status, origin, ` + syncColumns + `,
		created_by, created_at, confirmed_by, confirmed_at
	FROM consignaciones`

// ConsignacionRepo implementación de ConsignacionRepository sobre PostgreSQL.
type ConsignacionRepo struct {
	q Querier
}

// NewConsignacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsignacionRepository(q Querier) *ConsignacionRepo {
	return &ConsignacionRepo{q: q}
}

// Create persiste una consignación con sus líneas y bloque de sync inicial.
func (r *ConsignacionRepo) Create(c *entity.Consignacion) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO consignaciones (id, company_id, from_centro_id, to_centro_id, items,
			status, origin, ` + syncColumns + `, created_by, created_at, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	var confirmedBy *string
	if c.ConfirmedBy != "" {
		confirmedBy = &c.ConfirmedBy
	}
	_, err = r.q.Exec(context.Background(), query,
		c.ID, c.CompanyID, c.FromCentroID, c.ToCentroID, items, c.Status, c.Origin,
		c.Sync.Pushed, c.Sync.Status, c.Sync.DocEntry, c.Sync.DocNum, c.Sync.DocType,
		c.Sync.SyncDate, c.Sync.Error, c.Sync.RetryCount, c.Sync.Retrying, c.Sync.ClaimedAt,
		c.CreatedBy, c.CreatedAt, confirmedBy, c.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("create consignacion: %w", err)
	}
	return nil
}

func scanConsignacion(row pgx.Row) (*entity.Consignacion, error) {
	var c entity.Consignacion
	var items []byte
	var confirmedBy *string
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.FromCentroID, &c.ToCentroID, &items, &c.Status, &c.Origin,
		&c.Sync.Pushed, &c.Sync.Status, &c.Sync.DocEntry, &c.Sync.DocNum, &c.Sync.DocType,
		&c.Sync.SyncDate, &c.Sync.Error, &c.Sync.RetryCount, &c.Sync.Retrying, &c.Sync.ClaimedAt,
		&c.CreatedBy, &c.CreatedAt, &confirmedBy, &c.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan consignacion: %w", err)
	}
	if confirmedBy != nil {
		c.ConfirmedBy = *confirmedBy
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return &c, nil
}

// GetByID obtiene una consignación por ID. Devuelve nil sin error si no existe.
func (r *ConsignacionRepo) GetByID(id string) (*entity.Consignacion, error) {
	return scanConsignacion(r.q.QueryRow(context.Background(), consignacionSelect+` WHERE id = $1`, id))
}

// GetByIDForUpdate obtiene una consignación y bloquea la fila (SELECT FOR UPDATE).
func (r *ConsignacionRepo) GetByIDForUpdate(id string) (*entity.Consignacion, error) {
	return scanConsignacion(r.q.QueryRow(context.Background(), consignacionSelect+` WHERE id = $1 FOR UPDATE`, id))
}

// Update persiste estado, líneas confirmadas y datos de confirmación.
func (r *ConsignacionRepo) Update(c *entity.Consignacion) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var confirmedBy *string
	if c.ConfirmedBy != "" {
		confirmedBy = &c.ConfirmedBy
	}
	query := `
		UPDATE consignaciones SET items = $2, status = $3, confirmed_by = $4, confirmed_at = $5
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query, c.ID, items, c.Status, confirmedBy, c.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("update consignacion: %w", err)
	}
	return nil
}

// ListByCompany lista consignaciones de la empresa, opcionalmente por estado.
func (r *ConsignacionRepo) ListByCompany(companyID, status string, limit, offset int) ([]*entity.Consignacion, error) {
	query := consignacionSelect + ` WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consignaciones: %w", err)
	}
	defer rows.Close()

	var out []*entity.Consignacion
	for rows.Next() {
		var c entity.Consignacion
		var items []byte
		var confirmedBy *string
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.FromCentroID, &c.ToCentroID, &items, &c.Status, &c.Origin,
			&c.Sync.Pushed, &c.Sync.Status, &c.Sync.DocEntry, &c.Sync.DocNum, &c.Sync.DocType,
			&c.Sync.SyncDate, &c.Sync.Error, &c.Sync.RetryCount, &c.Sync.Retrying, &c.Sync.ClaimedAt,
			&c.CreatedBy, &c.CreatedAt, &confirmedBy, &c.ConfirmedAt,
		); err != nil {
			return nil, fmt.Errorf("scan consignacion: %w", err)
		}
		if confirmedBy != nil {
			c.ConfirmedBy = *confirmedBy
		}
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateSync sobrescribe el bloque de sincronización.
func (r *ConsignacionRepo) UpdateSync(id string, sync entity.SyncInfo) error {
	return updateSync(r.q, consignacionTable, id, sync)
}

// ClaimRetry toma el lock de reintento (CAS atómico).
func (r *ConsignacionRepo) ClaimRetry(id string, lease time.Duration) (bool, error) {
	return claimRetry(r.q, consignacionTable, id, lease)
}

// ReleaseRetry libera el lock e incrementa retry_count.
func (r *ConsignacionRepo) ReleaseRetry(id string, sync entity.SyncInfo) error {
	return releaseRetry(r.q, consignacionTable, id, sync)
}

// ListRetryable lista IDs con push fallido y lock libre.
func (r *ConsignacionRepo) ListRetryable(companyID string, lease time.Duration, limit int) ([]string, error) {
	return listRetryable(r.q, consignacionTable, companyID, lease, limit)
}

// ExistsByExternalDoc indica si alguna consignación fue empujada con esos identificadores.
func (r *ConsignacionRepo) ExistsByExternalDoc(companyID, docType string, docEntry int64) (bool, error) {
	return existsByExternalDoc(r.q, consignacionTable, companyID, docType, docEntry)
}
