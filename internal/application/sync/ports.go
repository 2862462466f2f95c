package sync

import (
	"context"

	"github.com/shopspring/decimal"
)

// DocResult identificadores asignados por el ERP al aceptar un documento.
type DocResult struct {
	DocEntry int64
	DocNum   int64
}

// StockTransferLine línea de traslado de stock en el ERP.
type StockTransferLine struct {
	ItemCode    string
	BatchNumber string
	Quantity    int64
}

// StockTransferRequest documento de traslado entre almacenes del ERP.
type StockTransferRequest struct {
	FromWhsCode string
	ToWhsCode   string
	Lines       []StockTransferLine
	Comments    string
}

// DeliveryLine línea de nota de entrega (consumo) en el ERP.
type DeliveryLine struct {
	ItemCode    string
	BatchNumber string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// DeliveryRequest nota de entrega del ERP.
type DeliveryRequest struct {
	WhsCode  string
	Lines    []DeliveryLine
	Comments string
}

// ReceiptLine línea de entrada de compras en el ERP.
type ReceiptLine struct {
	ItemCode    string
	BatchNumber string
	Quantity    int64
	UnitCost    decimal.Decimal
}

// ReceiptRequest entrada de compras del ERP.
type ReceiptRequest struct {
	WhsCode  string
	Supplier string
	Lines    []ReceiptLine
	Comments string
}

// ERPGateway define el puerto de salida hacia el ERP para la creación de
// documentos. Los errores se devuelven como *domain.ExternalSystemError:
// Retryable=true cuando el ERP no respondió, false cuando rechazó el documento.
type ERPGateway interface {
	Ping(ctx context.Context, companyID string) error
	CreateStockTransfer(ctx context.Context, companyID string, req StockTransferRequest) (*DocResult, error)
	CreateDeliveryNote(ctx context.Context, companyID string, req DeliveryRequest) (*DocResult, error)
	CreatePurchaseDeliveryNote(ctx context.Context, companyID string, req ReceiptRequest) (*DocResult, error)
}
