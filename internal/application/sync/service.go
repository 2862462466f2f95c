package sync

import (
	"context"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// DefaultRetryLease es el lease del lock de reintento: un lock tomado hace más
// de esto se considera de un worker caído y puede reclamarse.
const DefaultRetryLease = 15 * time.Minute

// Service empuja documentos locales al ERP y mantiene su bloque de sincronización.
// El push nunca afecta el documento local más allá del bloque de sync: el registro
// local es la fuente de verdad del inventario físico pase lo que pase con el ERP.
type Service struct {
	recepciones    repository.RecepcionRepository
	consignaciones repository.ConsignacionRepository
	consumos       repository.ConsumoRepository
	productos      repository.ProductoRepository
	centros        repository.CentroRepository
	gateway        ERPGateway
	lease          time.Duration
	log            *logger.Logger
}

// NewService construye el servicio de sincronización.
func NewService(
	recepciones repository.RecepcionRepository,
	consignaciones repository.ConsignacionRepository,
	consumos repository.ConsumoRepository,
	productos repository.ProductoRepository,
	centros repository.CentroRepository,
	gateway ERPGateway,
	log *logger.Logger,
) *Service {
	return &Service{
		recepciones:    recepciones,
		consignaciones: consignaciones,
		consumos:       consumos,
		productos:      productos,
		centros:        centros,
		gateway:        gateway,
		lease:          DefaultRetryLease,
		log:            log,
	}
}

// WithLease ajusta el lease del lock de reintento (configurable por despliegue).
func (s *Service) WithLease(d time.Duration) *Service {
	if d > 0 {
		s.lease = d
	}
	return s
}

// itemCode resuelve el código de artículo ERP de un producto local.
func (s *Service) itemCode(productID string) (string, error) {
	p, err := s.productos.GetByID(productID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", domain.ErrNotFound
	}
	return p.ItemCode, nil
}

// whsCode resuelve el código de almacén ERP de un centro local.
func (s *Service) whsCode(centroID string) (string, error) {
	c, err := s.centros.GetByID(centroID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", domain.ErrNotFound
	}
	return c.WarehouseCode, nil
}

// apply registra el resultado de un push en un bloque de sync.
func apply(sync entity.SyncInfo, res *DocResult, pushErr error, now time.Time) entity.SyncInfo {
	sync.Retrying = false
	sync.ClaimedAt = nil
	if pushErr != nil {
		sync.Status = entity.SyncStatusFailed
		sync.Error = pushErr.Error() // mensaje del ERP tal cual
		return sync
	}
	sync.Pushed = true
	sync.Status = entity.SyncStatusSynced
	sync.DocEntry = res.DocEntry
	sync.DocNum = res.DocNum
	sync.SyncDate = &now
	sync.Error = ""
	return sync
}

// PushRecepcion empuja una recepción como entrada de compras al ERP.
func (s *Service) PushRecepcion(ctx context.Context, id string) error {
	rec, err := s.recepciones.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if rec.Sync.Status == entity.SyncStatusSynced {
		return nil
	}
	res, pushErr := s.pushRecepcion(ctx, rec)
	final := apply(rec.Sync, res, pushErr, time.Now())
	if err := s.recepciones.UpdateSync(rec.ID, final); err != nil {
		return err
	}
	s.logOutcome("recepcion", rec.ID, rec.CompanyID, final, pushErr)
	return pushErr
}

func (s *Service) pushRecepcion(ctx context.Context, rec *entity.Recepcion) (*DocResult, error) {
	whs, err := s.whsCode(rec.CentroID)
	if err != nil {
		return nil, err
	}
	req := ReceiptRequest{WhsCode: whs, Supplier: rec.Supplier, Comments: "vasculares:" + rec.ID}
	for _, it := range rec.Items {
		code, err := s.itemCode(it.ProductID)
		if err != nil {
			return nil, err
		}
		req.Lines = append(req.Lines, ReceiptLine{
			ItemCode:    code,
			BatchNumber: it.LotNumber,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		})
	}
	return s.gateway.CreatePurchaseDeliveryNote(ctx, rec.CompanyID, req)
}

// PushConsignacion empuja una consignación como traslado de stock al ERP.
func (s *Service) PushConsignacion(ctx context.Context, id string) error {
	cons, err := s.consignaciones.GetByID(id)
	if err != nil {
		return err
	}
	if cons == nil {
		return domain.ErrNotFound
	}
	if cons.Sync.Status == entity.SyncStatusSynced {
		return nil
	}
	res, pushErr := s.pushConsignacion(ctx, cons)
	final := apply(cons.Sync, res, pushErr, time.Now())
	if err := s.consignaciones.UpdateSync(cons.ID, final); err != nil {
		return err
	}
	s.logOutcome("consignacion", cons.ID, cons.CompanyID, final, pushErr)
	return pushErr
}

func (s *Service) pushConsignacion(ctx context.Context, cons *entity.Consignacion) (*DocResult, error) {
	fromWhs, err := s.whsCode(cons.FromCentroID)
	if err != nil {
		return nil, err
	}
	toWhs, err := s.whsCode(cons.ToCentroID)
	if err != nil {
		return nil, err
	}
	req := StockTransferRequest{FromWhsCode: fromWhs, ToWhsCode: toWhs, Comments: "vasculares:" + cons.ID}
	for _, it := range cons.Items {
		code, err := s.itemCode(it.ProductID)
		if err != nil {
			return nil, err
		}
		req.Lines = append(req.Lines, StockTransferLine{
			ItemCode:    code,
			BatchNumber: it.LotNumber,
			Quantity:    it.QuantitySent,
		})
	}
	return s.gateway.CreateStockTransfer(ctx, cons.CompanyID, req)
}

// PushConsumo empuja un consumo como nota de entrega al ERP.
func (s *Service) PushConsumo(ctx context.Context, id string) error {
	con, err := s.consumos.GetByID(id)
	if err != nil {
		return err
	}
	if con == nil {
		return domain.ErrNotFound
	}
	if con.Sync.Status == entity.SyncStatusSynced {
		return nil
	}
	res, pushErr := s.pushConsumo(ctx, con)
	final := apply(con.Sync, res, pushErr, time.Now())
	if err := s.consumos.UpdateSync(con.ID, final); err != nil {
		return err
	}
	s.logOutcome("consumo", con.ID, con.CompanyID, final, pushErr)
	return pushErr
}

func (s *Service) pushConsumo(ctx context.Context, con *entity.Consumo) (*DocResult, error) {
	whs, err := s.whsCode(con.CentroID)
	if err != nil {
		return nil, err
	}
	req := DeliveryRequest{WhsCode: whs, Comments: "vasculares:" + con.ID}
	for _, it := range con.Items {
		code, err := s.itemCode(it.ProductID)
		if err != nil {
			return nil, err
		}
		req.Lines = append(req.Lines, DeliveryLine{
			ItemCode:    code,
			BatchNumber: it.LotNumber,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return s.gateway.CreateDeliveryNote(ctx, con.CompanyID, req)
}

func (s *Service) logOutcome(kind, id, companyID string, final entity.SyncInfo, pushErr error) {
	if pushErr != nil {
		s.log.Warn().
			Str("company_id", companyID).
			Str(kind+"_id", id).
			Str("error", final.Error).
			Msg("push al ERP falló")
		return
	}
	s.log.Info().
		Str("company_id", companyID).
		Str(kind+"_id", id).
		Int64("doc_entry", final.DocEntry).
		Int64("doc_num", final.DocNum).
		Msg("documento sincronizado con el ERP")
}
