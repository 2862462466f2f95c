package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.ConfigRepository = (*ConfigRepo)(nil)

// ConfigRepo implementación de ConfigRepository sobre PostgreSQL.
type ConfigRepo struct {
	q Querier
}

// NewConfigRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConfigRepository(q Querier) *ConfigRepo {
	return &ConfigRepo{q: q}
}

// Get obtiene la configuración de la empresa. Devuelve nil sin error si no existe.
func (r *ConfigRepo) Get(companyID string) (*entity.CompanyConfig, error) {
	query := `SELECT company_id, go_live_date, updated_by, updated_at
		FROM company_configs WHERE company_id = $1`
	var cfg entity.CompanyConfig
	err := r.q.QueryRow(context.Background(), query, companyID).Scan(
		&cfg.CompanyID, &cfg.GoLiveDate, &cfg.UpdatedBy, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &cfg, nil
}

// Upsert inserta o actualiza la configuración de la empresa.
func (r *ConfigRepo) Upsert(cfg *entity.CompanyConfig) error {
	query := `
		INSERT INTO company_configs (company_id, go_live_date, updated_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (company_id)
		DO UPDATE SET go_live_date = EXCLUDED.go_live_date,
			updated_by = EXCLUDED.updated_by, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, cfg.CompanyID, cfg.GoLiveDate, cfg.UpdatedBy)
	if err != nil {
		return fmt.Errorf("upsert config: %w", err)
	}
	return nil
}
