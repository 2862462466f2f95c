package sapb1

import "encoding/json"

// Recursos del Service Layer por tipo de documento.
const (
	resourceStockTransfers        = "StockTransfers"
	resourceDeliveryNotes         = "DeliveryNotes"
	resourcePurchaseDeliveryNotes = "PurchaseDeliveryNotes"
)

// loginRequest cuerpo de POST /b1s/v1/Login.
type loginRequest struct {
	CompanyDB string `json:"CompanyDB"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
}

// documentHeader campos comunes de cabecera que devuelve el Service Layer.
type documentHeader struct {
	DocEntry int64  `json:"DocEntry"`
	DocNum   int64  `json:"DocNum"`
	DocDate  string `json:"DocDate"`
}

// documentPage página OData de documentos; NextLink permite paginar.
type documentPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"odata.nextLink"`
}

// batchDetail fila de BatchNumberDetails del Service Layer.
type batchDetail struct {
	Batch    string  `json:"Batch"`
	Quantity float64 `json:"Quantity"`
}

// batchDetailPage página OData de detalles de lote.
type batchDetailPage struct {
	Value    []batchDetail `json:"value"`
	NextLink string        `json:"odata.nextLink"`
}

// serviceLayerError cuerpo de error del Service Layer.
type serviceLayerError struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// documentLine línea genérica de documento de inventario en el Service Layer.
type documentLine struct {
	ItemCode      string        `json:"ItemCode"`
	Quantity      float64       `json:"Quantity"`
	UnitPrice     float64       `json:"UnitPrice,omitempty"`
	WarehouseCode string        `json:"WarehouseCode,omitempty"`
	BatchNumbers  []batchNumber `json:"BatchNumbers,omitempty"`
}

// batchNumber asignación de lote a una línea.
type batchNumber struct {
	BatchNumber string  `json:"BatchNumber"`
	Quantity    float64 `json:"Quantity"`
}

// stockTransferLine línea de traslado (usa FromWarehouseCode propio).
type stockTransferLine struct {
	ItemCode          string        `json:"ItemCode"`
	Quantity          float64       `json:"Quantity"`
	FromWarehouseCode string        `json:"FromWarehouseCode"`
	WarehouseCode     string        `json:"WarehouseCode"`
	BatchNumbers      []batchNumber `json:"BatchNumbers,omitempty"`
}

// stockTransferBody cuerpo de POST StockTransfers.
type stockTransferBody struct {
	FromWarehouse      string              `json:"FromWarehouse"`
	ToWarehouse        string              `json:"ToWarehouse"`
	Comments           string              `json:"Comments,omitempty"`
	StockTransferLines []stockTransferLine `json:"StockTransferLines"`
}

// marketingDocumentBody cuerpo de POST DeliveryNotes / PurchaseDeliveryNotes.
type marketingDocumentBody struct {
	CardCode      string         `json:"CardCode,omitempty"`
	Comments      string         `json:"Comments,omitempty"`
	DocumentLines []documentLine `json:"DocumentLines"`
}
