package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
)

// InventarioHandler maneja las consultas de inventario, lotes y transacciones (protegido).
type InventarioHandler struct {
	queries   *ledger.QueryUseCase
	recompute *ledger.RecomputeUseCase
}

// NewInventarioHandler construye el handler.
func NewInventarioHandler(queries *ledger.QueryUseCase, recompute *ledger.RecomputeUseCase) *InventarioHandler {
	return &InventarioHandler{queries: queries, recompute: recompute}
}

// ByCentro devuelve el inventario agregado de un centro.
// GET /api/inventario/:centroId
func (h *InventarioHandler) ByCentro(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	centroID := c.Params("centroId")
	if centroID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "centroId requerido"})
	}
	list, err := h.queries.InventarioByCentro(c.Context(), companyID, centroID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "inventario": list})
}

// LotesByProduct lista los lotes de un producto en todos los centros.
// GET /api/lotes?product_id=...
func (h *InventarioHandler) LotesByProduct(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}
	list, err := h.queries.LotesByProduct(c.Context(), companyID, productID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "lotes": list})
}

// Transacciones lista el historial de movimientos, con filtro opcional de fechas.
// GET /api/transacciones?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=&offset=
func (h *InventarioHandler) Transacciones(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser YYYY-MM-DD"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser YYYY-MM-DD"})
		}
		// inclusivo hasta el final del día
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}

	list, err := h.queries.Transacciones(c.Context(), companyID, from, to, page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "transacciones": list})
}

// Recompute recalcula desde cero el agregado de un par producto/centro.
// Herramienta de reparación; el agregado normal se mantiene en cada movimiento.
// POST /api/inventario/recompute
func (h *InventarioHandler) Recompute(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in struct {
		ProductID string `json:"product_id"`
		CentroID  string `json:"centro_id"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" || in.CentroID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y centro_id requeridos"})
	}
	if err := h.recompute.Recompute(c.Context(), companyID, in.ProductID, in.CentroID); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "agregado recalculado"})
}
