package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
)

// Helpers compartidos por las tres tablas con bloque de sincronización
// (recepciones, consignaciones, consumos). Las columnas sync_* son idénticas en
// las tres; el nombre de tabla siempre es una constante del paquete, nunca input.

const syncColumns = `sync_pushed, sync_status, sync_doc_entry, sync_doc_num, sync_doc_type,
	sync_date, sync_error, sync_retry_count, sync_retrying, sync_claimed_at`

// updateSync sobrescribe el bloque de sincronización de un documento.
func updateSync(q Querier, table, id string, s entity.SyncInfo) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sync_pushed = $2, sync_status = $3, sync_doc_entry = $4,
			sync_doc_num = $5, sync_doc_type = $6, sync_date = $7, sync_error = $8,
			sync_retry_count = $9, sync_retrying = $10, sync_claimed_at = $11
		WHERE id = $1`, table)
	_, err := q.Exec(context.Background(), query,
		id, s.Pushed, s.Status, s.DocEntry, s.DocNum, s.DocType,
		s.SyncDate, s.Error, s.RetryCount, s.Retrying, s.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("update sync %s: %w", table, err)
	}
	return nil
}

// claimRetry toma el lock de reintento con un compare-and-set atómico:
// solo gana quien encuentre sync_retrying en false (o un lease vencido de un
// worker caído). Devuelve true si este caller obtuvo el lock.
func claimRetry(q Querier, table, id string, lease time.Duration) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET sync_retrying = true, sync_status = $3, sync_claimed_at = now()
		WHERE id = $1
		  AND sync_status IN ($3, $4)
		  AND (sync_retrying = false OR sync_claimed_at < now() - make_interval(secs => $2))`,
		table)
	tag, err := q.Exec(context.Background(), query,
		id, lease.Seconds(), entity.SyncStatusRetrying, entity.SyncStatusFailed)
	if err != nil {
		return false, fmt.Errorf("claim retry %s: %w", table, err)
	}
	return tag.RowsAffected() == 1, nil
}

// releaseRetry libera el lock, incrementa el contador de reintentos y deja el
// estado final reportado por el push.
func releaseRetry(q Querier, table, id string, s entity.SyncInfo) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sync_pushed = $2, sync_status = $3, sync_doc_entry = $4,
			sync_doc_num = $5, sync_date = $6, sync_error = $7,
			sync_retry_count = sync_retry_count + 1, sync_retrying = false,
			sync_claimed_at = NULL
		WHERE id = $1`, table)
	_, err := q.Exec(context.Background(), query,
		id, s.Pushed, s.Status, s.DocEntry, s.DocNum, s.SyncDate, s.Error,
	)
	if err != nil {
		return fmt.Errorf("release retry %s: %w", table, err)
	}
	return nil
}

// listRetryable devuelve IDs con push fallido y lock libre o con lease vencido.
func listRetryable(q Querier, table, companyID string, lease time.Duration, limit int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE company_id = $1 AND sync_status = $4
		  AND (sync_retrying = false OR sync_claimed_at < now() - make_interval(secs => $2))
		ORDER BY created_at
		LIMIT $3`, table)
	rows, err := q.Query(context.Background(), query,
		companyID, lease.Seconds(), limit, entity.SyncStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("list retryable %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// existsByExternalDoc indica si algún documento local fue empujado con esos
// identificadores externos.
func existsByExternalDoc(q Querier, table, companyID, docType string, docEntry int64) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE company_id = $1 AND sync_doc_type = $2 AND sync_doc_entry = $3 AND sync_pushed
		)`, table)
	var exists bool
	err := q.QueryRow(context.Background(), query, companyID, docType, docEntry).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists external doc %s: %w", table, err)
	}
	return exists, nil
}
