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

var _ repository.ConsumoRepository = (*ConsumoRepo)(nil)

const consumoTable = "consumos"

const consumoSelect = `
	SELECT id, company_id, centro_id, items, patient, procedure_name, origin,
		total_items, total_quantity, total_value, ` + syncColumns + `,
		created_by, created_at
	FROM consumos`

// ConsumoRepo implementación de ConsumoRepository sobre PostgreSQL.
type ConsumoRepo struct {
	q Querier
}

// NewConsumoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumoRepository(q Querier) *ConsumoRepo {
	return &ConsumoRepo{q: q}
}

// Create persiste un consumo. Los totales se recalculan desde las líneas antes
// de escribir: nunca se confía en totales venidos de fuera.
func (r *ConsumoRepo) Create(c *entity.Consumo) error {
	c.ComputeTotals()
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO consumos (id, company_id, centro_id, items, patient, procedure_name, origin,
			total_items, total_quantity, total_value, ` + syncColumns + `, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.q.Exec(context.Background(), query,
		c.ID, c.CompanyID, c.CentroID, items, c.Patient, c.Procedure, c.Origin,
		c.TotalItems, c.TotalQuantity, c.TotalValue,
		c.Sync.Pushed, c.Sync.Status, c.Sync.DocEntry, c.Sync.DocNum, c.Sync.DocType,
		c.Sync.SyncDate, c.Sync.Error, c.Sync.RetryCount, c.Sync.Retrying, c.Sync.ClaimedAt,
		c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create consumo: %w", err)
	}
	return nil
}

func scanConsumo(row pgx.Row) (*entity.Consumo, error) {
	var c entity.Consumo
	var items []byte
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.CentroID, &items, &c.Patient, &c.Procedure, &c.Origin,
		&c.TotalItems, &c.TotalQuantity, &c.TotalValue,
		&c.Sync.Pushed, &c.Sync.Status, &c.Sync.DocEntry, &c.Sync.DocNum, &c.Sync.DocType,
		&c.Sync.SyncDate, &c.Sync.Error, &c.Sync.RetryCount, &c.Sync.Retrying, &c.Sync.ClaimedAt,
		&c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan consumo: %w", err)
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return &c, nil
}

// GetByID obtiene un consumo por ID. Devuelve nil sin error si no existe.
func (r *ConsumoRepo) GetByID(id string) (*entity.Consumo, error) {
	return scanConsumo(r.q.QueryRow(context.Background(), consumoSelect+` WHERE id = $1`, id))
}

// ListByCentro lista consumos de un centro, recientes primero.
func (r *ConsumoRepo) ListByCentro(companyID, centroID string, limit, offset int) ([]*entity.Consumo, error) {
	query := consumoSelect + ` WHERE company_id = $1 AND centro_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, centroID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list consumos: %w", err)
	}
	defer rows.Close()

	var out []*entity.Consumo
	for rows.Next() {
		var c entity.Consumo
		var items []byte
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.CentroID, &items, &c.Patient, &c.Procedure, &c.Origin,
			&c.TotalItems, &c.TotalQuantity, &c.TotalValue,
			&c.Sync.Pushed, &c.Sync.Status, &c.Sync.DocEntry, &c.Sync.DocNum, &c.Sync.DocType,
			&c.Sync.SyncDate, &c.Sync.Error, &c.Sync.RetryCount, &c.Sync.Retrying, &c.Sync.ClaimedAt,
			&c.CreatedBy, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan consumo: %w", err)
		}
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateSync sobrescribe el bloque de sincronización.
func (r *ConsumoRepo) UpdateSync(id string, sync entity.SyncInfo) error {
	return updateSync(r.q, consumoTable, id, sync)
}

// ClaimRetry toma el lock de reintento (CAS atómico).
func (r *ConsumoRepo) ClaimRetry(id string, lease time.Duration) (bool, error) {
	return claimRetry(r.q, consumoTable, id, lease)
}

// ReleaseRetry libera el lock e incrementa retry_count.
func (r *ConsumoRepo) ReleaseRetry(id string, sync entity.SyncInfo) error {
	return releaseRetry(r.q, consumoTable, id, sync)
}

// ListRetryable lista IDs con push fallido y lock libre.
func (r *ConsumoRepo) ListRetryable(companyID string, lease time.Duration, limit int) ([]string, error) {
	return listRetryable(r.q, consumoTable, companyID, lease, limit)
}

// ExistsByExternalDoc indica si algún consumo fue empujado con esos identificadores.
func (r *ConsumoRepo) ExistsByExternalDoc(companyID, docType string, docEntry int64) (bool, error) {
	return existsByExternalDoc(r.q, consumoTable, companyID, docType, docEntry)
}
