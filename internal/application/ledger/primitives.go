package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// Primitivas del ledger de lotes. Cada una bloquea la(s) fila(s) de lote
// (SELECT FOR UPDATE) antes de leer particiones, de modo que dos movimientos
// concurrentes sobre el mismo lote se serializan en la BD y no hay lost updates.
// Se invocan siempre dentro de una transacción del TxRunner.

// receiveLote busca el lote por (producto, número de lote, centro). Si existe,
// valida que el vencimiento coincida (solo fecha) y suma a total y disponible.
// Si no existe, crea un lote ACTIVE con disponible = total = cantidad.
func receiveLote(
	lotes repository.LoteRepository,
	companyID, productID, centroID, lotNumber string,
	quantity int64, expiry time.Time, now time.Time,
) (*entity.Lote, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	l, err := lotes.GetByKeyForUpdate(companyID, productID, centroID, lotNumber)
	if err != nil {
		return nil, err
	}
	if l != nil {
		if !l.SameExpiryDate(expiry) {
			return nil, &domain.ConflictError{
				LotNumber:      lotNumber,
				ExistingExpiry: l.Expiry,
				NewExpiry:      expiry,
			}
		}
		l.Total += quantity
		l.Available += quantity
		l.Status = entity.LoteStatusActive
		l.UpdatedAt = now
		if err := lotes.Update(l); err != nil {
			return nil, err
		}
		return l, nil
	}
	l = &entity.Lote{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: productID,
		CentroID:  centroID,
		LotNumber: lotNumber,
		Expiry:    expiry,
		Total:     quantity,
		Available: quantity,
		Status:    entity.LoteStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := lotes.Create(l); err != nil {
		return nil, err
	}
	return l, nil
}

// transferLote debita disponible y acredita consignado en el lote origen, y
// acredita el lote espejo en el centro destino (creándolo si no existe).
// Devuelve origen y destino ya persistidos.
func transferLote(
	lotes repository.LoteRepository,
	sourceLoteID, fromCentroID, toCentroID string,
	quantity int64, now time.Time,
) (*entity.Lote, *entity.Lote, error) {
	if quantity <= 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	src, err := lotes.GetByIDForUpdate(sourceLoteID)
	if err != nil {
		return nil, nil, err
	}
	if src == nil {
		return nil, nil, domain.ErrNotFound
	}
	if src.CentroID != fromCentroID {
		return nil, nil, &domain.LocationMismatchError{
			LotNumber:     src.LotNumber,
			ClaimedCentro: fromCentroID,
			ActualCentro:  src.CentroID,
		}
	}
	if src.Available < quantity {
		return nil, nil, &domain.InsufficientStockError{
			ProductID: src.ProductID,
			LotNumber: src.LotNumber,
			Requested: quantity,
			Available: src.Available,
		}
	}
	src.Available -= quantity
	src.Consigned += quantity
	// Lo consignado sigue vivo: DEPLETED solo si ya no queda nada por consumir.
	if src.Available == 0 && src.Consumed == src.Total {
		src.Status = entity.LoteStatusDepleted
	}
	src.UpdatedAt = now
	if err := lotes.Update(src); err != nil {
		return nil, nil, err
	}

	dst, err := lotes.GetByKeyForUpdate(src.CompanyID, src.ProductID, toCentroID, src.LotNumber)
	if err != nil {
		return nil, nil, err
	}
	if dst != nil {
		dst.Total += quantity
		dst.Available += quantity
		dst.Consigned += quantity
		dst.Status = entity.LoteStatusActive
		dst.UpdatedAt = now
		if err := lotes.Update(dst); err != nil {
			return nil, nil, err
		}
		return src, dst, nil
	}
	dst = &entity.Lote{
		ID:        uuid.New().String(),
		CompanyID: src.CompanyID,
		ProductID: src.ProductID,
		CentroID:  toCentroID,
		LotNumber: src.LotNumber,
		Expiry:    src.Expiry,
		Total:     quantity,
		Available: quantity,
		Consigned: quantity,
		Status:    entity.LoteStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := lotes.Create(dst); err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// consumeLote debita disponible y consignado y acredita consumido en un lote de
// centro. El chequeo sobre consignado es un guardia de consistencia: todo consumo
// sale de stock previamente consignado al centro; si no alcanza, hay datos corruptos.
func consumeLote(
	lotes repository.LoteRepository,
	loteID, centroID string,
	quantity int64, now time.Time,
) (*entity.Lote, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	l, err := lotes.GetByIDForUpdate(loteID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	if l.CentroID != centroID {
		return nil, &domain.LocationMismatchError{
			LotNumber:     l.LotNumber,
			ClaimedCentro: centroID,
			ActualCentro:  l.CentroID,
		}
	}
	if l.Available < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: l.ProductID,
			LotNumber: l.LotNumber,
			Requested: quantity,
			Available: l.Available,
		}
	}
	if l.Consigned-quantity < 0 {
		return nil, &domain.ConsistencyError{
			LotNumber: l.LotNumber,
			Detail:    "consumo mayor que lo consignado al centro",
		}
	}
	l.Available -= quantity
	l.Consigned -= quantity
	l.Consumed += quantity
	if l.Available == 0 {
		l.Status = entity.LoteStatusDepleted
	}
	l.UpdatedAt = now
	if err := lotes.Update(l); err != nil {
		return nil, err
	}
	return l, nil
}

// recomputeInventario relee todos los lotes del par (producto, centro) y
// sobrescribe la fila agregada con las sumas. Puro e idempotente: se invoca tras
// cada primitiva y sirve también como reparación manual.
func recomputeInventario(
	lotes repository.LoteRepository,
	inv repository.InventarioRepository,
	companyID, productID, centroID string,
	now time.Time,
) error {
	ls, err := lotes.ListByPair(companyID, productID, centroID)
	if err != nil {
		return err
	}
	agg := &entity.Inventario{
		CompanyID:        companyID,
		ProductID:        productID,
		CentroID:         centroID,
		LastMovementDate: now,
		UpdatedAt:        now,
	}
	for _, l := range ls {
		agg.Total += l.Total
		agg.Available += l.Available
		agg.Consigned += l.Consigned
		agg.Consumed += l.Consumed
		agg.Damaged += l.Damaged
		agg.Returned += l.Returned
	}
	return inv.Upsert(agg)
}
