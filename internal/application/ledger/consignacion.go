package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// ConsignacionUseCase maneja el traslado en bloque bodega→centro y su confirmación.
// Crear aplica un débito de lote por línea (fase EN_TRANSITO); Confirmar registra
// las cantidades recibidas y cierra la consignación (RECIBIDO).
type ConsignacionUseCase struct {
	txRunner TxRunner
	centros  repository.CentroRepository
	log      *logger.Logger
}

// NewConsignacionUseCase construye el caso de uso.
func NewConsignacionUseCase(txRunner TxRunner, centros repository.CentroRepository, log *logger.Logger) *ConsignacionUseCase {
	return &ConsignacionUseCase{txRunner: txRunner, centros: centros, log: log}
}

// ConsignacionItemInput línea de traslado: lote origen y cantidad a enviar.
type ConsignacionItemInput struct {
	LoteID   string
	Quantity int64
}

// ConsignacionInput entrada para crear una consignación.
type ConsignacionInput struct {
	CompanyID    string
	UserID       string
	FromCentroID string
	ToCentroID   string
	Items        []ConsignacionItemInput
}

// Crear valida, aplica los traslados en una sola transacción y devuelve la
// consignación EN_TRANSITO con su bloque de sync en PENDING.
func (uc *ConsignacionUseCase) Crear(ctx context.Context, input ConsignacionInput) (*entity.Consignacion, error) {
	if input.CompanyID == "" || input.UserID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.FromCentroID == "" || input.ToCentroID == "" || input.FromCentroID == input.ToCentroID {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range input.Items {
		if it.LoteID == "" || it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, id := range []string{input.FromCentroID, input.ToCentroID} {
		c, err := uc.centros.GetByID(id)
		if err != nil {
			return nil, err
		}
		if c == nil || c.CompanyID != input.CompanyID {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	cons := &entity.Consignacion{
		ID:           uuid.New().String(),
		CompanyID:    input.CompanyID,
		FromCentroID: input.FromCentroID,
		ToCentroID:   input.ToCentroID,
		Status:       entity.ConsignacionEnTransito,
		Origin:       entity.OriginApp,
		Sync:         entity.NewSyncInfo(entity.DocTypeStockTransfer),
		CreatedBy:    input.UserID,
		CreatedAt:    now,
	}

	err := uc.txRunner.RunConsignacion(ctx, func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		consignaciones repository.ConsignacionRepository,
	) error {
		for _, it := range input.Items {
			src, dst, err := transferLote(lotes, it.LoteID, input.FromCentroID, input.ToCentroID, it.Quantity, now)
			if err != nil {
				return err
			}
			if src.CompanyID != input.CompanyID {
				return domain.ErrForbidden
			}
			tx := &entity.Transaccion{
				ID:           uuid.New().String(),
				CompanyID:    input.CompanyID,
				Type:         entity.TxTypeConsignmentOut,
				ProductID:    src.ProductID,
				LoteID:       src.ID,
				LotNumber:    src.LotNumber,
				Quantity:     it.Quantity,
				FromCentroID: input.FromCentroID,
				ToCentroID:   input.ToCentroID,
				CreatedBy:    input.UserID,
				CreatedAt:    now,
			}
			if err := movs.Create(tx); err != nil {
				return err
			}
			// Un traslado toca dos pares (producto, centro): se recalculan ambos.
			if err := recomputeInventario(lotes, inv, input.CompanyID, src.ProductID, input.FromCentroID, now); err != nil {
				return err
			}
			if err := recomputeInventario(lotes, inv, input.CompanyID, dst.ProductID, input.ToCentroID, now); err != nil {
				return err
			}
			cons.Items = append(cons.Items, entity.ConsignacionItem{
				ProductID:    src.ProductID,
				LoteID:       dst.ID,
				LotNumber:    src.LotNumber,
				QuantitySent: it.Quantity,
			})
		}
		return consignaciones.Create(cons)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", input.CompanyID).
		Str("consignacion_id", cons.ID).
		Str("to_centro", input.ToCentroID).
		Int("items", len(cons.Items)).
		Msg("consignación creada")
	return cons, nil
}

// ConfirmacionInput entrada para confirmar recepción en el centro destino.
// Received mapea LoteID (destino) → cantidad recibida declarada por el operador.
type ConfirmacionInput struct {
	CompanyID      string
	UserID         string
	ConsignacionID string
	Received       map[string]int64
}

// Confirmar registra las cantidades recibidas por línea y pasa la consignación a
// RECIBIDO. Las discrepancias enviado/recibido quedan registradas para el
// operador; nunca se corrigen solas.
func (uc *ConsignacionUseCase) Confirmar(ctx context.Context, input ConfirmacionInput) (*entity.Consignacion, error) {
	if input.CompanyID == "" || input.UserID == "" || input.ConsignacionID == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, qty := range input.Received {
		if qty < 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	var cons *entity.Consignacion
	err := uc.txRunner.RunConsignacion(ctx, func(
		_ repository.LoteRepository,
		_ repository.TransaccionRepository,
		_ repository.InventarioRepository,
		consignaciones repository.ConsignacionRepository,
	) error {
		c, err := consignaciones.GetByIDForUpdate(input.ConsignacionID)
		if err != nil {
			return err
		}
		if c == nil || c.CompanyID != input.CompanyID {
			return domain.ErrNotFound
		}
		if c.Status != entity.ConsignacionEnTransito {
			return domain.ErrInvalidInput
		}
		for i := range c.Items {
			qty, ok := input.Received[c.Items[i].LoteID]
			if !ok {
				return domain.ErrInvalidInput
			}
			received := qty
			c.Items[i].QuantityReceived = &received
		}
		c.Status = entity.ConsignacionRecibida
		c.ConfirmedBy = input.UserID
		c.ConfirmedAt = &now
		if err := consignaciones.Update(c); err != nil {
			return err
		}
		cons = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info()
	if cons.HasDiscrepancies() {
		ev = uc.log.Warn().Bool("discrepancies", true)
	}
	ev.Str("company_id", input.CompanyID).
		Str("consignacion_id", cons.ID).
		Msg("consignación confirmada")
	return cons, nil
}
