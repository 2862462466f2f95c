package dto

import "github.com/shopspring/decimal"

// ── Recepciones ───────────────────────────────────────────────────────────────

// RecepcionItemRequest línea de una recepción en bodega.
type RecepcionItemRequest struct {
	ProductID string          `json:"product_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Expiry    string          `json:"expiry"` // YYYY-MM-DD
}

// CreateRecepcionRequest cuerpo de POST /api/recepciones.
type CreateRecepcionRequest struct {
	CentroID string                 `json:"centro_id"`
	Supplier string                 `json:"supplier"`
	Items    []RecepcionItemRequest `json:"items"`
}

// ── Consignaciones ────────────────────────────────────────────────────────────

// ConsignacionItemRequest línea de traslado: lote origen y cantidad.
type ConsignacionItemRequest struct {
	LoteID   string `json:"lote_id"`
	Quantity int64  `json:"quantity"`
}

// CreateConsignacionRequest cuerpo de POST /api/consignaciones.
type CreateConsignacionRequest struct {
	FromCentroID string                    `json:"from_centro_id"`
	ToCentroID   string                    `json:"to_centro_id"`
	Items        []ConsignacionItemRequest `json:"items"`
}

// ConfirmConsignacionRequest cuerpo de POST /api/consignaciones/:id/confirmar.
// Received mapea lote destino → cantidad recibida declarada por el operador.
type ConfirmConsignacionRequest struct {
	Received map[string]int64 `json:"received"`
}

// ── Consumos ──────────────────────────────────────────────────────────────────

// ConsumoItemRequest línea de consumo en procedimiento.
type ConsumoItemRequest struct {
	LoteID    string          `json:"lote_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateConsumoRequest cuerpo de POST /api/consumos.
type CreateConsumoRequest struct {
	CentroID  string               `json:"centro_id"`
	Patient   string               `json:"patient"`
	Procedure string               `json:"procedure"`
	Items     []ConsumoItemRequest `json:"items"`
}
