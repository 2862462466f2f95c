package sync

import (
	"context"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// retryBatchSize limita cuántos documentos por tipo procesa un barrido.
const retryBatchSize = 50

// RetryStats resume un barrido de reintentos.
type RetryStats struct {
	Claimed   int
	Recovered int
	Failed    int
}

// RetrySweep reintenta los documentos FAILED de una empresa. Solo actúa sobre un
// documento si obtiene el lock de reintento con el compare-and-set del repositorio;
// así dos barridos concurrentes nunca empujan dos veces el mismo documento al ERP
// (el documento externo duplicado sería irreversible).
func (s *Service) RetrySweep(ctx context.Context, companyID string) (RetryStats, error) {
	var stats RetryStats

	sweep := func(tracker repository.SyncTracker, push func(ctx context.Context, id string) error) error {
		ids, err := tracker.ListRetryable(companyID, s.lease, retryBatchSize)
		if err != nil {
			return err
		}
		for _, id := range ids {
			claimed, err := tracker.ClaimRetry(id, s.lease)
			if err != nil {
				return err
			}
			if !claimed {
				continue
			}
			stats.Claimed++
			// push actualiza el bloque de sync y limpia el lock al terminar;
			// el repositorio incrementa retry_count al liberar.
			if err := push(ctx, id); err != nil {
				stats.Failed++
				continue
			}
			stats.Recovered++
		}
		return nil
	}

	if err := sweep(s.recepciones, s.retryRecepcion); err != nil {
		return stats, err
	}
	if err := sweep(s.consignaciones, s.retryConsignacion); err != nil {
		return stats, err
	}
	if err := sweep(s.consumos, s.retryConsumo); err != nil {
		return stats, err
	}

	if stats.Claimed > 0 {
		s.log.Info().
			Str("company_id", companyID).
			Int("claimed", stats.Claimed).
			Int("recovered", stats.Recovered).
			Int("failed", stats.Failed).
			Msg("barrido de reintentos completado")
	}
	return stats, nil
}

func (s *Service) retryRecepcion(ctx context.Context, id string) error {
	rec, err := s.recepciones.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	res, pushErr := s.pushRecepcion(ctx, rec)
	final := apply(rec.Sync, res, pushErr, time.Now())
	final.Status = retryStatus(final)
	if err := s.recepciones.ReleaseRetry(id, final); err != nil {
		return err
	}
	s.logOutcome("recepcion", id, rec.CompanyID, final, pushErr)
	return pushErr
}

func (s *Service) retryConsignacion(ctx context.Context, id string) error {
	cons, err := s.consignaciones.GetByID(id)
	if err != nil {
		return err
	}
	if cons == nil {
		return domain.ErrNotFound
	}
	res, pushErr := s.pushConsignacion(ctx, cons)
	final := apply(cons.Sync, res, pushErr, time.Now())
	final.Status = retryStatus(final)
	if err := s.consignaciones.ReleaseRetry(id, final); err != nil {
		return err
	}
	s.logOutcome("consignacion", id, cons.CompanyID, final, pushErr)
	return pushErr
}

func (s *Service) retryConsumo(ctx context.Context, id string) error {
	con, err := s.consumos.GetByID(id)
	if err != nil {
		return err
	}
	if con == nil {
		return domain.ErrNotFound
	}
	res, pushErr := s.pushConsumo(ctx, con)
	final := apply(con.Sync, res, pushErr, time.Now())
	final.Status = retryStatus(final)
	if err := s.consumos.ReleaseRetry(id, final); err != nil {
		return err
	}
	s.logOutcome("consumo", id, con.CompanyID, final, pushErr)
	return pushErr
}

func retryStatus(final entity.SyncInfo) string {
	if final.Status == entity.SyncStatusSynced {
		return entity.SyncStatusSynced
	}
	return entity.SyncStatusFailed
}
