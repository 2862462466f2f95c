package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio centinela. Los casos de uso los devuelven envueltos con %w
// para que la capa HTTP los traduzca con errors.Is.
var (
	// ErrNotFound el recurso no existe o no pertenece a la empresa.
	ErrNotFound = errors.New("recurso no encontrado")
	// ErrInvalidInput datos de entrada inválidos.
	ErrInvalidInput = errors.New("datos de entrada inválidos")
	// ErrForbidden el actor no tiene permiso sobre el recurso.
	ErrForbidden = errors.New("acceso denegado")
	// ErrNotConfigured falta configuración requerida (ej. fecha de salida en vivo).
	ErrNotConfigured = errors.New("configuración requerida ausente")
)

// InsufficientStockError se devuelve cuando la cantidad pedida supera lo
// disponible del lote. Available es la partición disponible, no el total:
// un lote puede tener total alto y disponible cero.
type InsufficientStockError struct {
	ProductID string
	LotNumber string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en lote %s del producto %s: pedido %d, disponible %d",
		e.LotNumber, e.ProductID, e.Requested, e.Available)
}

// LocationMismatchError se devuelve cuando la operación declara un centro que
// no coincide con la ubicación real del lote.
type LocationMismatchError struct {
	LotNumber     string
	ClaimedCentro string
	ActualCentro  string
}

func (e *LocationMismatchError) Error() string {
	return fmt.Sprintf("el lote %s está en el centro %s, no en %s",
		e.LotNumber, e.ActualCentro, e.ClaimedCentro)
}

// ConflictError se devuelve cuando una recepción reutiliza un número de lote
// existente con una fecha de vencimiento distinta. Los números de lote del
// fabricante identifican un vencimiento único; la discrepancia exige revisión
// manual, nunca se resuelve sola.
type ConflictError struct {
	LotNumber      string
	ExistingExpiry time.Time
	NewExpiry      time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("el lote %s ya existe con vencimiento %s; la entrada declara %s",
		e.LotNumber, e.ExistingExpiry.Format("2006-01-02"), e.NewExpiry.Format("2006-01-02"))
}

// ConsistencyError se devuelve cuando una operación dejaría las particiones del
// lote en un estado imposible (ej. consumir más de lo consignado al centro).
// Señala datos corruptos o un flujo fuera de orden; requiere intervención.
type ConsistencyError struct {
	LotNumber string
	Detail    string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistencia en lote %s: %s", e.LotNumber, e.Detail)
}

// ExternalSystemError representa un fallo al hablar con el ERP externo.
// Retryable distingue fallos transitorios (el ERP no respondió) de rechazos
// definitivos (el ERP respondió con error de negocio).
type ExternalSystemError struct {
	Op        string
	Message   string
	Retryable bool
}

func (e *ExternalSystemError) Error() string {
	return fmt.Sprintf("erp: %s: %s", e.Op, e.Message)
}
