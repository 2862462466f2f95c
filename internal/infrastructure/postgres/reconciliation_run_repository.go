package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

var _ repository.ReconciliationRunRepository = (*ReconciliationRunRepo)(nil)

// ReconciliationRunRepo implementación del historial de ejecuciones sobre PostgreSQL.
type ReconciliationRunRepo struct {
	q Querier
}

// NewReconciliationRunRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReconciliationRunRepository(q Querier) *ReconciliationRunRepo {
	return &ReconciliationRunRepo{q: q}
}

// Create persiste el registro inicial de una ejecución.
func (r *ReconciliationRunRepo) Create(run *entity.ReconciliationRun) error {
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	query := `
		INSERT INTO reconciliation_runs (id, company_id, run_type, status, window_from,
			window_to, docs_checked, external_docs_found, errors, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		run.ID, run.CompanyID, run.RunType, run.Status, run.WindowFrom,
		run.WindowTo, run.DocsChecked, run.ExternalDocsFound, errs,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create reconciliation run: %w", err)
	}
	return nil
}

// Update persiste el estado terminal y las estadísticas de la propia ejecución.
func (r *ReconciliationRunRepo) Update(run *entity.ReconciliationRun) error {
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	query := `
		UPDATE reconciliation_runs SET status = $2, docs_checked = $3,
			external_docs_found = $4, errors = $5, finished_at = $6
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		run.ID, run.Status, run.DocsChecked, run.ExternalDocsFound, errs, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update reconciliation run: %w", err)
	}
	return nil
}

const runColumns = `id, company_id, run_type, status, window_from, window_to,
	docs_checked, external_docs_found, errors, started_at, finished_at`

func scanRun(row pgx.Row) (*entity.ReconciliationRun, error) {
	var run entity.ReconciliationRun
	var errs []byte
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.RunType, &run.Status, &run.WindowFrom, &run.WindowTo,
		&run.DocsChecked, &run.ExternalDocsFound, &errs, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reconciliation run: %w", err)
	}
	if len(errs) > 0 {
		if err := json.Unmarshal(errs, &run.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors: %w", err)
		}
	}
	return &run, nil
}

// GetByID obtiene una ejecución por ID. Devuelve nil sin error si no existe.
func (r *ReconciliationRunRepo) GetByID(id string) (*entity.ReconciliationRun, error) {
	query := `SELECT ` + runColumns + ` FROM reconciliation_runs WHERE id = $1`
	return scanRun(r.q.QueryRow(context.Background(), query, id))
}

// ListByCompany lista ejecuciones de la empresa, recientes primero.
func (r *ReconciliationRunRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.ReconciliationRun, error) {
	query := `SELECT ` + runColumns + ` FROM reconciliation_runs
		WHERE company_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reconciliation runs: %w", err)
	}
	defer rows.Close()

	var out []*entity.ReconciliationRun
	for rows.Next() {
		var run entity.ReconciliationRun
		var errs []byte
		if err := rows.Scan(
			&run.ID, &run.CompanyID, &run.RunType, &run.Status, &run.WindowFrom, &run.WindowTo,
			&run.DocsChecked, &run.ExternalDocsFound, &errs, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reconciliation run: %w", err)
		}
		if len(errs) > 0 {
			if err := json.Unmarshal(errs, &run.Errors); err != nil {
				return nil, fmt.Errorf("unmarshal errors: %w", err)
			}
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}
