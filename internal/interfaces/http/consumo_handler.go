package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
)

// ConsumoHandler maneja las peticiones HTTP de consumos en procedimientos (protegido).
type ConsumoHandler struct {
	uc   *ledger.ConsumoUseCase
	sync *appsync.Service
}

// NewConsumoHandler construye el handler.
func NewConsumoHandler(uc *ledger.ConsumoUseCase, sync *appsync.Service) *ConsumoHandler {
	return &ConsumoHandler{uc: uc, sync: sync}
}

// Create registra el consumo de material en un procedimiento.
// POST /api/consumos
func (h *ConsumoHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateConsumoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.ConsumoInput{
		CompanyID: companyID,
		UserID:    userID,
		CentroID:  in.CentroID,
		Patient:   in.Patient,
		Procedure: in.Procedure,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, ledger.ConsumoItemInput{
			LoteID:    it.LoteID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	con, err := h.uc.Registrar(c.Context(), input)
	if err != nil {
		return mapDomainError(c, err)
	}

	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		_ = h.sync.PushConsumo(ctx, id)
	}(con.ID)

	return c.Status(fiber.StatusCreated).JSON(con)
}
