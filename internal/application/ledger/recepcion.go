package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// RecepcionUseCase registra entradas de mercancía a bodega de forma transaccional:
// por cada línea aplica la primitiva de recepción sobre el lote, apunta la
// transacción en el libro y recalcula el agregado antes de responder.
type RecepcionUseCase struct {
	txRunner  TxRunner
	productos repository.ProductoRepository
	centros   repository.CentroRepository
	log       *logger.Logger
}

// NewRecepcionUseCase construye el caso de uso.
func NewRecepcionUseCase(
	txRunner TxRunner,
	productos repository.ProductoRepository,
	centros repository.CentroRepository,
	log *logger.Logger,
) *RecepcionUseCase {
	return &RecepcionUseCase{txRunner: txRunner, productos: productos, centros: centros, log: log}
}

// RecepcionItemInput línea de entrada: producto, número de lote, cantidad, costo y vencimiento.
type RecepcionItemInput struct {
	ProductID string
	LotNumber string
	Quantity  int64
	UnitCost  decimal.Decimal
	Expiry    time.Time
}

// RecepcionInput entrada para registrar una recepción en bodega.
type RecepcionInput struct {
	CompanyID string
	UserID    string
	CentroID  string // bodega que recibe
	Supplier  string
	Items     []RecepcionItemInput
}

// Crear valida la entrada, aplica cada línea dentro de una sola transacción y
// devuelve la recepción creada con su bloque de sync en PENDING.
func (uc *RecepcionUseCase) Crear(ctx context.Context, input RecepcionInput) (*entity.Recepcion, error) {
	if input.CompanyID == "" || input.UserID == "" || input.CentroID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range input.Items {
		if it.ProductID == "" || it.LotNumber == "" || it.Quantity <= 0 || it.Expiry.IsZero() {
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
	for _, it := range input.Items {
		p, err := uc.productos.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != input.CompanyID {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	rec := &entity.Recepcion{
		ID:        uuid.New().String(),
		CompanyID: input.CompanyID,
		CentroID:  input.CentroID,
		Supplier:  input.Supplier,
		Origin:    entity.OriginApp,
		Sync:      entity.NewSyncInfo(entity.DocTypePurchaseDeliveryNote),
		CreatedBy: input.UserID,
		CreatedAt: now,
	}

	err = uc.txRunner.RunRecepcion(ctx, func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		recepciones repository.RecepcionRepository,
	) error {
		for _, it := range input.Items {
			l, err := receiveLote(lotes, input.CompanyID, it.ProductID, input.CentroID,
				it.LotNumber, it.Quantity, it.Expiry, now)
			if err != nil {
				return err
			}
			tx := &entity.Transaccion{
				ID:         uuid.New().String(),
				CompanyID:  input.CompanyID,
				Type:       entity.TxTypeWarehouseReceipt,
				ProductID:  it.ProductID,
				LoteID:     l.ID,
				LotNumber:  it.LotNumber,
				Quantity:   it.Quantity,
				ToCentroID: input.CentroID,
				Detail:     entity.TxDetail{Supplier: input.Supplier, UnitCost: it.UnitCost},
				CreatedBy:  input.UserID,
				CreatedAt:  now,
			}
			if err := movs.Create(tx); err != nil {
				return err
			}
			if err := recomputeInventario(lotes, inv, input.CompanyID, it.ProductID, input.CentroID, now); err != nil {
				return err
			}
			rec.Items = append(rec.Items, entity.RecepcionItem{
				ProductID:     it.ProductID,
				LoteID:        l.ID,
				LotNumber:     it.LotNumber,
				Quantity:      it.Quantity,
				UnitCost:      it.UnitCost,
				Expiry:        it.Expiry,
				TransaccionID: tx.ID,
			})
		}
		return recepciones.Create(rec)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", input.CompanyID).
		Str("recepcion_id", rec.ID).
		Int("items", len(rec.Items)).
		Msg("recepción registrada")
	return rec, nil
}
