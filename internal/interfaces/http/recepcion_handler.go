package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
)

// RecepcionHandler maneja las peticiones HTTP de recepciones en bodega (protegido).
type RecepcionHandler struct {
	uc   *ledger.RecepcionUseCase
	sync *appsync.Service
}

// NewRecepcionHandler construye el handler.
func NewRecepcionHandler(uc *ledger.RecepcionUseCase, sync *appsync.Service) *RecepcionHandler {
	return &RecepcionHandler{uc: uc, sync: sync}
}

// Create registra una recepción de mercancía en bodega.
// POST /api/recepciones
func (h *RecepcionHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateRecepcionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.RecepcionInput{
		CompanyID: companyID,
		UserID:    userID,
		CentroID:  in.CentroID,
		Supplier:  in.Supplier,
	}
	for _, it := range in.Items {
		expiry, err := time.Parse("2006-01-02", it.Expiry)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "expiry debe ser YYYY-MM-DD"})
		}
		input.Items = append(input.Items, ledger.RecepcionItemInput{
			ProductID: it.ProductID,
			LotNumber: it.LotNumber,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Expiry:    expiry,
		})
	}

	rec, err := h.uc.Crear(c.Context(), input)
	if err != nil {
		return mapDomainError(c, err)
	}

	// Envío al ERP fuera de la petición: el resultado queda en el bloque de
	// sync del documento y si falla lo recoge el barrido de reintentos.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		_ = h.sync.PushRecepcion(ctx, id)
	}(rec.ID)

	return c.Status(fiber.StatusCreated).JSON(rec)
}
