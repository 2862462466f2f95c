package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/dto"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
)

// mapDomainError traduce errores de dominio a respuestas HTTP.
// Los errores tipados del libro de inventario llegan envueltos con %w, por eso
// se resuelven con errors.As/errors.Is y no por igualdad directa.
func mapDomainError(c *fiber.Ctx, err error) error {
	var insufficientErr *domain.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficientErr.Error()})
	}
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOT_CONFLICT", Message: conflictErr.Error()})
	}
	var locErr *domain.LocationMismatchError
	if errors.As(err, &locErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCATION_MISMATCH", Message: locErr.Error()})
	}
	var consErr *domain.ConsistencyError
	if errors.As(err, &consErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONSISTENCY", Message: consErr.Error()})
	}
	var extErr *domain.ExternalSystemError
	if errors.As(err, &extErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "EXTERNAL_SYSTEM", Message: extErr.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotConfigured):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "empresa sin fecha de salida en vivo configurada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
