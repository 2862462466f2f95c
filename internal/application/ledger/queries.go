package ledger

import (
	"context"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// QueryUseCase agrupa las lecturas del ledger: inventario agregado, lotes,
// libro de movimientos y consignaciones pendientes. Solo lee; va contra el pool.
type QueryUseCase struct {
	lotes          repository.LoteRepository
	inv            repository.InventarioRepository
	movs           repository.TransaccionRepository
	consignaciones repository.ConsignacionRepository
}

// NewQueryUseCase construye el caso de uso de lecturas.
func NewQueryUseCase(
	lotes repository.LoteRepository,
	inv repository.InventarioRepository,
	movs repository.TransaccionRepository,
	consignaciones repository.ConsignacionRepository,
) *QueryUseCase {
	return &QueryUseCase{lotes: lotes, inv: inv, movs: movs, consignaciones: consignaciones}
}

// InventarioByCentro devuelve las filas agregadas de un centro.
func (uc *QueryUseCase) InventarioByCentro(ctx context.Context, companyID, centroID string) ([]*entity.Inventario, error) {
	if companyID == "" || centroID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.inv.ListByCentro(companyID, centroID)
}

// LotesByProduct devuelve todos los lotes de un producto en todos los centros.
func (uc *QueryUseCase) LotesByProduct(ctx context.Context, companyID, productID string) ([]*entity.Lote, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.lotes.ListByProduct(companyID, productID)
}

// Transacciones lista el libro de movimientos de la empresa en un rango de fechas.
func (uc *QueryUseCase) Transacciones(ctx context.Context, companyID string, from, to *time.Time, limit, offset int) ([]*entity.Transaccion, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.movs.ListByCompany(companyID, from, to, limit, offset)
}

// ConsignacionPendiente es una consignación EN_TRANSITO con su marca de antigüedad.
type ConsignacionPendiente struct {
	Consignacion *entity.Consignacion
	EsAntigua    bool
}

// ConsignacionesPendientes lista las consignaciones EN_TRANSITO marcando las que
// superan el periodo de gracia, para alertas operativas.
func (uc *QueryUseCase) ConsignacionesPendientes(ctx context.Context, companyID string, limit, offset int) ([]ConsignacionPendiente, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	cs, err := uc.consignaciones.ListByCompany(companyID, entity.ConsignacionEnTransito, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]ConsignacionPendiente, 0, len(cs))
	for _, c := range cs {
		out = append(out, ConsignacionPendiente{Consignacion: c, EsAntigua: c.EsAntigua(now)})
	}
	return out, nil
}
