package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/reconciliation"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
)

// ReconciliationHandler maneja las operaciones de operador sobre la conciliación
// con el ERP (protegido, solo admin).
type ReconciliationHandler struct {
	engine *reconciliation.Engine
	admin  *reconciliation.AdminUseCase
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(engine *reconciliation.Engine, admin *reconciliation.AdminUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{engine: engine, admin: admin}
}

// Trigger dispara una conciliación manual para la empresa del token.
// POST /api/reconciliation/run
func (h *ReconciliationHandler) Trigger(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	run, err := h.engine.RunCompany(c.Context(), companyID, entity.RunTypeManual)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(run)
}

// History lista las últimas ejecuciones de conciliación.
// GET /api/reconciliation/runs
func (h *ReconciliationHandler) History(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	runs, err := h.admin.History(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(runs), "runs": runs})
}

// RunStatus devuelve el detalle de una ejecución.
// GET /api/reconciliation/runs/:id
func (h *ReconciliationHandler) RunStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	run, err := h.admin.RunStatus(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(run)
}

// ListDocuments lista los documentos externos hallados, opcionalmente por resolución.
// GET /api/reconciliation/documents?resolution=DISCOVERED
func (h *ReconciliationHandler) ListDocuments(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	docs, err := h.admin.ListExternalDocuments(c.Context(), companyID, c.Query("resolution"), page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(docs), "documentos": docs})
}

// ResolveDocument actualiza la resolución de un documento externo.
// PUT /api/reconciliation/documents/:id
func (h *ReconciliationHandler) ResolveDocument(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ResolveExternalDocRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.admin.UpdateExternalDocumentStatus(c.Context(), companyID, c.Params("id"), in.Resolution); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "resolución actualizada"})
}

// GetConfig devuelve la configuración de conciliación de la empresa.
// GET /api/reconciliation/config
func (h *ReconciliationHandler) GetConfig(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	cfg, err := h.admin.GetConfig(c.Context(), companyID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(cfg)
}

// SetGoLive fija la fecha de salida en vivo de la empresa.
// PUT /api/reconciliation/config/golive
func (h *ReconciliationHandler) SetGoLive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SetGoLiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	goLive, err := time.Parse("2006-01-02", in.GoLiveDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "go_live_date debe ser YYYY-MM-DD"})
	}
	if err := h.admin.SetGoLiveDate(c.Context(), companyID, userID, goLive); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "fecha de salida en vivo configurada"})
}
