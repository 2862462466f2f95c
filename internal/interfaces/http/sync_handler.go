package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
)

// SyncHandler expone operaciones de sincronización con el ERP (protegido, solo admin).
type SyncHandler struct {
	svc *appsync.Service
}

// NewSyncHandler construye el handler.
func NewSyncHandler(svc *appsync.Service) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// RetrySweep dispara un barrido manual de reintentos para la empresa del token.
// POST /api/sync/retry
func (h *SyncHandler) RetrySweep(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	stats, err := h.svc.RetrySweep(c.Context(), companyID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(stats)
}

// PushRecepcion reintenta manualmente el envío de una recepción al ERP.
// POST /api/sync/recepciones/:id/push
func (h *SyncHandler) PushRecepcion(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.svc.PushRecepcion(c.Context(), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "envío procesado"})
}

// PushConsignacion reintenta manualmente el envío de una consignación al ERP.
// POST /api/sync/consignaciones/:id/push
func (h *SyncHandler) PushConsignacion(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.svc.PushConsignacion(c.Context(), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "envío procesado"})
}

// PushConsumo reintenta manualmente el envío de un consumo al ERP.
// POST /api/sync/consumos/:id/push
func (h *SyncHandler) PushConsumo(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.svc.PushConsumo(c.Context(), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "envío procesado"})
}
