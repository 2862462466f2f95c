package reconciliation

import (
	"context"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// AdminUseCase agrupa las operaciones de operador sobre la conciliación:
// historial de ejecuciones, documentos externos y configuración de go-live.
type AdminUseCase struct {
	runs     repository.ReconciliationRunRepository
	externos repository.DocumentoExternoRepository
	configs  repository.ConfigRepository
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(
	runs repository.ReconciliationRunRepository,
	externos repository.DocumentoExternoRepository,
	configs repository.ConfigRepository,
) *AdminUseCase {
	return &AdminUseCase{runs: runs, externos: externos, configs: configs}
}

// History devuelve las últimas ejecuciones de la empresa.
func (uc *AdminUseCase) History(ctx context.Context, companyID string, limit, offset int) ([]*entity.ReconciliationRun, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.runs.ListByCompany(companyID, limit, offset)
}

// RunStatus devuelve una ejecución por ID, acotada a la empresa.
func (uc *AdminUseCase) RunStatus(ctx context.Context, companyID, runID string) (*entity.ReconciliationRun, error) {
	if companyID == "" || runID == "" {
		return nil, domain.ErrInvalidInput
	}
	run, err := uc.runs.GetByID(runID)
	if err != nil {
		return nil, err
	}
	if run == nil || run.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

// ListExternalDocuments lista documentos externos, opcionalmente por resolución.
func (uc *AdminUseCase) ListExternalDocuments(ctx context.Context, companyID, resolution string, limit, offset int) ([]*entity.DocumentoExterno, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.externos.List(companyID, resolution, limit, offset)
}

var validResolutions = map[string]bool{
	entity.ExternalDocAcknowledged: true,
	entity.ExternalDocImported:     true,
	entity.ExternalDocIgnored:      true,
}

// UpdateExternalDocumentStatus fija la resolución de un documento externo.
func (uc *AdminUseCase) UpdateExternalDocumentStatus(ctx context.Context, companyID, docID, resolution string) error {
	if companyID == "" || docID == "" || !validResolutions[resolution] {
		return domain.ErrInvalidInput
	}
	doc, err := uc.externos.GetByID(docID)
	if err != nil {
		return err
	}
	if doc == nil || doc.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.externos.UpdateResolution(docID, resolution)
}

// GetConfig devuelve la configuración de la empresa (nil GoLiveDate = sin configurar).
func (uc *AdminUseCase) GetConfig(ctx context.Context, companyID string) (*entity.CompanyConfig, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	cfg, err := uc.configs.Get(companyID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &entity.CompanyConfig{CompanyID: companyID}
	}
	return cfg, nil
}

// SetGoLiveDate fija la fecha de corte de la conciliación para la empresa.
func (uc *AdminUseCase) SetGoLiveDate(ctx context.Context, companyID, userID string, goLive time.Time) error {
	if companyID == "" || userID == "" || goLive.IsZero() {
		return domain.ErrInvalidInput
	}
	return uc.configs.Upsert(&entity.CompanyConfig{
		CompanyID:  companyID,
		GoLiveDate: &goLive,
		UpdatedBy:  userID,
		UpdatedAt:  time.Now(),
	})
}
