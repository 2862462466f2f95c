package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// ConsumoUseCase registra consumos en un centro (procedimientos): por cada línea
// aplica la primitiva de consumo, apunta la transacción y recalcula el agregado.
type ConsumoUseCase struct {
	txRunner TxRunner
	centros  repository.CentroRepository
	log      *logger.Logger
}

// NewConsumoUseCase construye el caso de uso.
func NewConsumoUseCase(txRunner TxRunner, centros repository.CentroRepository, log *logger.Logger) *ConsumoUseCase {
	return &ConsumoUseCase{txRunner: txRunner, centros: centros, log: log}
}

// ConsumoItemInput línea de consumo: lote, cantidad y precio unitario.
type ConsumoItemInput struct {
	LoteID    string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// ConsumoInput entrada para registrar un consumo.
type ConsumoInput struct {
	CompanyID string
	UserID    string
	CentroID  string
	Patient   string
	Procedure string
	Items     []ConsumoItemInput
}

// Registrar valida, consume cada lote en una sola transacción y devuelve el
// consumo con totales recalculados y sync en PENDING.
func (uc *ConsumoUseCase) Registrar(ctx context.Context, input ConsumoInput) (*entity.Consumo, error) {
	if input.CompanyID == "" || input.UserID == "" || input.CentroID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range input.Items {
		if it.LoteID == "" || it.Quantity <= 0 || it.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	centro, err := uc.centros.GetByID(input.CentroID)
	if err != nil {
		return nil, err
	}
	if centro == nil || centro.CompanyID != input.CompanyID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	consumo := &entity.Consumo{
		ID:        uuid.New().String(),
		CompanyID: input.CompanyID,
		CentroID:  input.CentroID,
		Patient:   input.Patient,
		Procedure: input.Procedure,
		Origin:    entity.OriginApp,
		Sync:      entity.NewSyncInfo(entity.DocTypeDeliveryNote),
		CreatedBy: input.UserID,
		CreatedAt: now,
	}

	err = uc.txRunner.RunConsumo(ctx, func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		consumos repository.ConsumoRepository,
	) error {
		for _, it := range input.Items {
			l, err := consumeLote(lotes, it.LoteID, input.CentroID, it.Quantity, now)
			if err != nil {
				var consistencyErr *domain.ConsistencyError
				if errors.As(err, &consistencyErr) {
					// Guardia de corrupción de datos, nunca esperado en operación normal.
					uc.log.Error().
						Str("company_id", input.CompanyID).
						Str("lote_id", it.LoteID).
						Str("detalle", consistencyErr.Detail).
						Msg("invariante de particiones violado en consumo")
				}
				return err
			}
			if l.CompanyID != input.CompanyID {
				return domain.ErrForbidden
			}
			tx := &entity.Transaccion{
				ID:           uuid.New().String(),
				CompanyID:    input.CompanyID,
				Type:         entity.TxTypeConsumption,
				ProductID:    l.ProductID,
				LoteID:       l.ID,
				LotNumber:    l.LotNumber,
				Quantity:     it.Quantity,
				FromCentroID: input.CentroID,
				Detail:       entity.TxDetail{Patient: input.Patient, Procedure: input.Procedure},
				CreatedBy:    input.UserID,
				CreatedAt:    now,
			}
			if err := movs.Create(tx); err != nil {
				return err
			}
			if err := recomputeInventario(lotes, inv, input.CompanyID, l.ProductID, input.CentroID, now); err != nil {
				return err
			}
			consumo.Items = append(consumo.Items, entity.ConsumoItem{
				ProductID: l.ProductID,
				LoteID:    l.ID,
				LotNumber: l.LotNumber,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
		consumo.ComputeTotals()
		return consumos.Create(consumo)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", input.CompanyID).
		Str("consumo_id", consumo.ID).
		Str("centro_id", input.CentroID).
		Int64("total_quantity", consumo.TotalQuantity).
		Msg("consumo registrado")
	return consumo, nil
}
