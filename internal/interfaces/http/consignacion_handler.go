package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
)

// ConsignacionHandler maneja las peticiones HTTP de consignaciones a centros (protegido).
type ConsignacionHandler struct {
	uc      *ledger.ConsignacionUseCase
	queries *ledger.QueryUseCase
	sync    *appsync.Service
}

// NewConsignacionHandler construye el handler.
func NewConsignacionHandler(uc *ledger.ConsignacionUseCase, queries *ledger.QueryUseCase, sync *appsync.Service) *ConsignacionHandler {
	return &ConsignacionHandler{uc: uc, queries: queries, sync: sync}
}

// Create crea una consignación de bodega a centro y descuenta el disponible de origen.
// POST /api/consignaciones
func (h *ConsignacionHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateConsignacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.ConsignacionInput{
		CompanyID:    companyID,
		UserID:       userID,
		FromCentroID: in.FromCentroID,
		ToCentroID:   in.ToCentroID,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, ledger.ConsignacionItemInput{
			LoteID:   it.LoteID,
			Quantity: it.Quantity,
		})
	}

	cons, err := h.uc.Crear(c.Context(), input)
	if err != nil {
		return mapDomainError(c, err)
	}

	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		_ = h.sync.PushConsignacion(ctx, id)
	}(cons.ID)

	return c.Status(fiber.StatusCreated).JSON(cons)
}

// Confirm confirma la recepción de una consignación en el centro destino.
// POST /api/consignaciones/:id/confirmar
func (h *ConsignacionHandler) Confirm(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.ConfirmConsignacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	cons, err := h.uc.Confirmar(c.Context(), ledger.ConfirmacionInput{
		CompanyID:      companyID,
		UserID:         userID,
		ConsignacionID: id,
		Received:       in.Received,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(cons)
}

// ListPendientes lista consignaciones EN_TRANSITO, marcando las antiguas.
// GET /api/consignaciones/pendientes
func (h *ConsignacionHandler) ListPendientes(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.queries.ConsignacionesPendientes(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "consignaciones": list})
}
