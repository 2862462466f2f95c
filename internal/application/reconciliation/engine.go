package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// trackedDocTypes son los tipos de documento ERP que la conciliación revisa.
var trackedDocTypes = []string{
	entity.DocTypeStockTransfer,
	entity.DocTypeDeliveryNote,
	entity.DocTypePurchaseDeliveryNote,
}

// Engine compara los documentos que el ERP reporta desde el go-live contra los
// registros locales y persiste como DocumentoExterno lo que nadie originó aquí.
// Es seguro re-ejecutarlo sobre la misma ventana: los documentos externos se
// upsertan por clave y cada ejecución escribe su propio registro de historial.
type Engine struct {
	companies repository.CompanyRepository
	configs   repository.ConfigRepository
	runs      repository.ReconciliationRunRepository
	externos  repository.DocumentoExternoRepository
	trackers  map[string]repository.SyncTracker
	source    DocumentSource
	log       *logger.Logger
}

// NewEngine construye el motor. Cada tipo de documento ERP se coteja contra el
// repositorio local que guarda ese tipo de documento.
func NewEngine(
	companies repository.CompanyRepository,
	configs repository.ConfigRepository,
	runs repository.ReconciliationRunRepository,
	externos repository.DocumentoExternoRepository,
	recepciones repository.RecepcionRepository,
	consignaciones repository.ConsignacionRepository,
	consumos repository.ConsumoRepository,
	source DocumentSource,
	log *logger.Logger,
) *Engine {
	return &Engine{
		companies: companies,
		configs:   configs,
		runs:      runs,
		externos:  externos,
		trackers: map[string]repository.SyncTracker{
			entity.DocTypePurchaseDeliveryNote: recepciones,
			entity.DocTypeStockTransfer:        consignaciones,
			entity.DocTypeDeliveryNote:         consumos,
		},
		source: source,
		log:    log,
	}
}

// RunAll ejecuta la conciliación para todas las empresas activas. El fallo de
// una empresa queda en su propio registro y no detiene a las demás.
func (e *Engine) RunAll(ctx context.Context, runType string) []*entity.ReconciliationRun {
	companies, err := e.companies.ListActive()
	if err != nil {
		e.log.Error().Err(err).Msg("conciliación: no se pudo listar empresas activas")
		return nil
	}
	runs := make([]*entity.ReconciliationRun, 0, len(companies))
	for _, c := range companies {
		run, err := e.RunCompany(ctx, c.ID, runType)
		if err != nil {
			// Aislado por empresa: se registra y se sigue con la siguiente.
			e.log.Error().Err(err).Str("company_id", c.ID).Msg("conciliación de empresa falló")
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	return runs
}

// RunCompany ejecuta la conciliación de una empresa sobre [goLiveDate, now].
// Sin goLiveDate configurado no se concilia nada: se registra una ejecución
// NOT_CONFIGURED para que el estado sea observable.
func (e *Engine) RunCompany(ctx context.Context, companyID, runType string) (*entity.ReconciliationRun, error) {
	now := time.Now()
	run := &entity.ReconciliationRun{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		RunType:   runType,
		Status:    entity.RunStatusStarted,
		WindowTo:  now,
		StartedAt: now,
	}

	cfg, err := e.configs.Get(companyID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.GoLiveDate == nil {
		run.Status = entity.RunStatusNotConfigured
		run.FinishedAt = &now
		if err := e.runs.Create(run); err != nil {
			return nil, err
		}
		e.log.Warn().Str("company_id", companyID).Msg("conciliación omitida: sin fecha de go-live")
		return run, nil
	}
	goLive := *cfg.GoLiveDate
	run.WindowFrom = goLive
	if err := e.runs.Create(run); err != nil {
		return nil, err
	}

	docs, err := e.source.GetDocumentsSince(ctx, companyID, trackedDocTypes, goLive)
	if err != nil {
		run.Errors = append(run.Errors, entity.RunError{Phase: "fetch", Message: err.Error()})
		e.finish(run, entity.RunStatusFailed, now)
		return run, err
	}

	for _, doc := range docs {
		run.DocsChecked++
		// Documentos anteriores al go-live se presumen preexistentes: nunca se persisten.
		if doc.DocDate.Before(goLive) {
			continue
		}
		tracker, ok := e.trackers[doc.DocType]
		if !ok {
			run.Errors = append(run.Errors, entity.RunError{
				Phase:   "classify",
				Message: fmt.Sprintf("tipo de documento no rastreado: %s", doc.DocType),
			})
			continue
		}
		known, err := tracker.ExistsByExternalDoc(companyID, doc.DocType, doc.DocEntry)
		if err != nil {
			run.Errors = append(run.Errors, entity.RunError{
				Phase:   "classify",
				Message: fmt.Sprintf("%s %d: %v", doc.DocType, doc.DocEntry, err),
			})
			continue
		}
		if known {
			continue
		}
		inserted, err := e.externos.Upsert(&entity.DocumentoExterno{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			DocType:      doc.DocType,
			DocEntry:     doc.DocEntry,
			DocNum:       doc.DocNum,
			DocDate:      doc.DocDate,
			Payload:      doc.Payload,
			Resolution:   entity.ExternalDocDiscovered,
			DiscoveredAt: now,
		})
		if err != nil {
			run.Errors = append(run.Errors, entity.RunError{
				Phase:   "persist",
				Message: fmt.Sprintf("%s %d: %v", doc.DocType, doc.DocEntry, err),
			})
			continue
		}
		// Solo las inserciones nuevas cuentan: re-ejecutar no infla el hallazgo.
		if inserted {
			run.ExternalDocsFound++
		}
	}

	status := entity.RunStatusSucceeded
	if len(run.Errors) > 0 {
		status = entity.RunStatusPartial
	}
	e.finish(run, status, now)

	e.log.Info().
		Str("company_id", companyID).
		Str("status", run.Status).
		Int("docs_checked", run.DocsChecked).
		Int("external_docs_found", run.ExternalDocsFound).
		Msg("conciliación terminada")
	return run, nil
}

func (e *Engine) finish(run *entity.ReconciliationRun, status string, started time.Time) {
	finished := time.Now()
	if finished.Before(started) {
		finished = started
	}
	run.Status = status
	run.FinishedAt = &finished
	if err := e.runs.Update(run); err != nil {
		e.log.Error().Err(err).Str("run_id", run.ID).Msg("no se pudo persistir el cierre de la ejecución")
	}
}
