package sapb1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/application/reconciliation"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
)

// ── Configuración ─────────────────────────────────────────────────────────────

// Config parámetros de conexión al Service Layer de SAP Business One.
// Companies mapea el ID interno de empresa a su base de datos en SAP; cuando
// una empresa no aparece en el mapa se usa DefaultDB.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	DefaultDB string
	Companies map[string]string
	Timeout   time.Duration
}

// sessionTTL es conservador frente a los 30 minutos que dura una sesión del
// Service Layer; pasado este tiempo el cliente vuelve a autenticarse.
const sessionTTL = 25 * time.Minute

// session sesión autenticada contra una base de datos de SAP.
type session struct {
	cookies   []*http.Cookie
	expiresAt time.Time
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// Client habla con el Service Layer de SAP Business One (REST/JSON).
// Implementa sync.ERPGateway (escritura de documentos) y
// reconciliation.DocumentSource (lectura para conciliación).
// Usa net/http de la stdlib; el Service Layer no requiere librerías de terceros.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	sessions map[string]*session // por CompanyDB
}

var (
	_ appsync.ERPGateway            = (*Client)(nil)
	_ reconciliation.DocumentSource = (*Client)(nil)
)

// NewClient construye el cliente del Service Layer. El timeout por defecto es
// generoso (60 s) porque SAP puede tardar varios segundos en contabilizar un
// documento con lotes.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		sessions:   make(map[string]*session),
	}
}

// companyDB resuelve la base de datos SAP de una empresa.
func (c *Client) companyDB(companyID string) string {
	if db, ok := c.cfg.Companies[companyID]; ok {
		return db
	}
	return c.cfg.DefaultDB
}

// ── Sesión ────────────────────────────────────────────────────────────────────

// login autentica contra POST /Login y guarda las cookies de sesión.
func (c *Client) login(ctx context.Context, companyDB string) (*session, error) {
	body, err := json.Marshal(loginRequest{
		CompanyDB: companyDB,
		UserName:  c.cfg.Username,
		Password:  c.cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/Login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalSystemError{Op: "login", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, slError("login", resp)
	}
	sess := &session{
		cookies:   resp.Cookies(),
		expiresAt: time.Now().Add(sessionTTL),
	}
	return sess, nil
}

// getSession devuelve una sesión vigente para la base de datos, autenticando
// si hace falta. force descarta la sesión cacheada (tras un 401).
func (c *Client) getSession(ctx context.Context, companyDB string, force bool) (*session, error) {
	c.mu.Lock()
	sess, ok := c.sessions[companyDB]
	if !force && ok && time.Now().Before(sess.expiresAt) {
		c.mu.Unlock()
		return sess, nil
	}
	c.mu.Unlock()

	sess, err := c.login(ctx, companyDB)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.sessions[companyDB] = sess
	c.mu.Unlock()
	return sess, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

// do ejecuta una petición autenticada. Ante un 401 renueva la sesión y
// reintenta una sola vez.
func (c *Client) do(ctx context.Context, companyID, method, path string, body []byte) (*http.Response, error) {
	companyDB := c.companyDB(companyID)

	force := false
	for attempt := 0; attempt < 2; attempt++ {
		sess, err := c.getSession(ctx, companyDB, force)
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for _, ck := range sess.cookies {
			req.AddCookie(ck)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &domain.ExternalSystemError{Op: method + " " + path, Message: err.Error(), Retryable: true}
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			force = true
			continue
		}
		return resp, nil
	}
	// inalcanzable: el bucle siempre retorna
	return nil, &domain.ExternalSystemError{Op: method + " " + path, Message: "sesión no disponible", Retryable: true}
}

// slError construye el error de dominio a partir de una respuesta no exitosa.
// Los 5xx se consideran transitorios; los 4xx son rechazos definitivos.
func slError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	msg := strings.TrimSpace(string(raw))
	var slErr serviceLayerError
	if err := json.Unmarshal(raw, &slErr); err == nil && slErr.Error.Message.Value != "" {
		msg = slErr.Error.Message.Value
	}
	return &domain.ExternalSystemError{
		Op:        op,
		Message:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg),
		Retryable: resp.StatusCode >= 500,
	}
}

// ── Ping ──────────────────────────────────────────────────────────────────────

// Ping verifica conectividad y credenciales contra el Service Layer.
func (c *Client) Ping(ctx context.Context, companyID string) error {
	_, err := c.getSession(ctx, c.companyDB(companyID), true)
	return err
}

// ── Creación de documentos (ERPGateway) ───────────────────────────────────────

// postDocument envía un documento y extrae DocEntry/DocNum de la respuesta.
func (c *Client) postDocument(ctx context.Context, companyID, resource string, payload any) (*appsync.DocResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, companyID, http.MethodPost, "/"+resource, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, slError("POST /"+resource, resp)
	}

	var header documentHeader
	if err := json.NewDecoder(resp.Body).Decode(&header); err != nil {
		return nil, &domain.ExternalSystemError{
			Op:        "POST /" + resource,
			Message:   fmt.Sprintf("respuesta ilegible: %v", err),
			Retryable: false,
		}
	}
	return &appsync.DocResult{DocEntry: header.DocEntry, DocNum: header.DocNum}, nil
}

// CreateStockTransfer crea un traslado de stock entre almacenes.
func (c *Client) CreateStockTransfer(ctx context.Context, companyID string, req appsync.StockTransferRequest) (*appsync.DocResult, error) {
	body := stockTransferBody{
		FromWarehouse: req.FromWhsCode,
		ToWarehouse:   req.ToWhsCode,
		Comments:      req.Comments,
	}
	for _, l := range req.Lines {
		body.StockTransferLines = append(body.StockTransferLines, stockTransferLine{
			ItemCode:          l.ItemCode,
			Quantity:          float64(l.Quantity),
			FromWarehouseCode: req.FromWhsCode,
			WarehouseCode:     req.ToWhsCode,
			BatchNumbers: []batchNumber{
				{BatchNumber: l.BatchNumber, Quantity: float64(l.Quantity)},
			},
		})
	}
	return c.postDocument(ctx, companyID, resourceStockTransfers, body)
}

// CreateDeliveryNote crea una nota de entrega (salida por consumo).
func (c *Client) CreateDeliveryNote(ctx context.Context, companyID string, req appsync.DeliveryRequest) (*appsync.DocResult, error) {
	body := marketingDocumentBody{Comments: req.Comments}
	for _, l := range req.Lines {
		price, _ := l.UnitPrice.Float64()
		body.DocumentLines = append(body.DocumentLines, documentLine{
			ItemCode:      l.ItemCode,
			Quantity:      float64(l.Quantity),
			UnitPrice:     price,
			WarehouseCode: req.WhsCode,
			BatchNumbers: []batchNumber{
				{BatchNumber: l.BatchNumber, Quantity: float64(l.Quantity)},
			},
		})
	}
	return c.postDocument(ctx, companyID, resourceDeliveryNotes, body)
}

// CreatePurchaseDeliveryNote crea una entrada de mercancía de compras.
func (c *Client) CreatePurchaseDeliveryNote(ctx context.Context, companyID string, req appsync.ReceiptRequest) (*appsync.DocResult, error) {
	body := marketingDocumentBody{
		CardCode: req.Supplier,
		Comments: req.Comments,
	}
	for _, l := range req.Lines {
		cost, _ := l.UnitCost.Float64()
		body.DocumentLines = append(body.DocumentLines, documentLine{
			ItemCode:      l.ItemCode,
			Quantity:      float64(l.Quantity),
			UnitPrice:     cost,
			WarehouseCode: req.WhsCode,
			BatchNumbers: []batchNumber{
				{BatchNumber: l.BatchNumber, Quantity: float64(l.Quantity)},
			},
		})
	}
	return c.postDocument(ctx, companyID, resourcePurchaseDeliveryNotes, body)
}

// GetBatchQuantities consulta las cantidades por lote de un artículo en un
// almacén de SAP. Sirve para cargas iniciales de inventario y verificaciones
// puntuales; ningún flujo regular depende del stock reportado por SAP.
func (c *Client) GetBatchQuantities(ctx context.Context, companyID, itemCode, whsCode string) (map[string]int64, error) {
	filter := fmt.Sprintf("ItemCode eq '%s' and WhsCode eq '%s'", itemCode, whsCode)
	path := fmt.Sprintf("/BatchNumberDetails?$filter=%s", url.QueryEscape(filter))

	quantities := make(map[string]int64)
	for path != "" {
		resp, err := c.do(ctx, companyID, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return nil, slError("GET /BatchNumberDetails", resp)
		}
		var page batchDetailPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, &domain.ExternalSystemError{
				Op:        "GET /BatchNumberDetails",
				Message:   fmt.Sprintf("página ilegible: %v", err),
				Retryable: false,
			}
		}
		for _, b := range page.Value {
			quantities[b.Batch] += int64(b.Quantity)
		}
		path = nextPath(page.NextLink, "BatchNumberDetails")
	}
	return quantities, nil
}

// ── Lectura de documentos (DocumentSource) ────────────────────────────────────

// resourceFor traduce el tipo de documento interno al recurso del Service Layer.
func resourceFor(docType string) (string, bool) {
	switch docType {
	case entity.DocTypeStockTransfer:
		return resourceStockTransfers, true
	case entity.DocTypeDeliveryNote:
		return resourceDeliveryNotes, true
	case entity.DocTypePurchaseDeliveryNote:
		return resourcePurchaseDeliveryNotes, true
	}
	return "", false
}

// GetDocumentsSince lista los documentos creados en el ERP desde una fecha,
// siguiendo la paginación OData del Service Layer.
func (c *Client) GetDocumentsSince(ctx context.Context, companyID string, docTypes []string, since time.Time) ([]reconciliation.ERPDocument, error) {
	var docs []reconciliation.ERPDocument
	for _, docType := range docTypes {
		resource, ok := resourceFor(docType)
		if !ok {
			return nil, fmt.Errorf("tipo de documento desconocido: %s", docType)
		}

		filter := fmt.Sprintf("DocDate ge '%s'", since.UTC().Format("2006-01-02"))
		path := fmt.Sprintf("/%s?$filter=%s&$orderby=DocEntry", resource, url.QueryEscape(filter))

		for path != "" {
			page, err := c.fetchPage(ctx, companyID, resource, path)
			if err != nil {
				return nil, err
			}
			for _, raw := range page.Value {
				var header documentHeader
				if err := json.Unmarshal(raw, &header); err != nil {
					return nil, &domain.ExternalSystemError{
						Op:        "GET /" + resource,
						Message:   fmt.Sprintf("documento ilegible: %v", err),
						Retryable: false,
					}
				}
				docDate, _ := time.Parse("2006-01-02T15:04:05Z", header.DocDate)
				if docDate.IsZero() {
					docDate, _ = time.Parse("2006-01-02", header.DocDate)
				}
				docs = append(docs, reconciliation.ERPDocument{
					DocType:  docType,
					DocEntry: header.DocEntry,
					DocNum:   header.DocNum,
					DocDate:  docDate,
					Payload:  string(raw),
				})
			}
			path = nextPath(page.NextLink, resource)
		}
	}
	return docs, nil
}

// fetchPage trae una página de documentos del recurso.
func (c *Client) fetchPage(ctx context.Context, companyID, resource, path string) (*documentPage, error) {
	resp, err := c.do(ctx, companyID, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, slError("GET /"+resource, resp)
	}
	var page documentPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &domain.ExternalSystemError{
			Op:        "GET /" + resource,
			Message:   fmt.Sprintf("página ilegible: %v", err),
			Retryable: false,
		}
	}
	return &page, nil
}

// nextPath normaliza el odata.nextLink a una ruta relativa a BaseURL.
// El Service Layer lo devuelve relativo ("StockTransfers?$skip=20").
func nextPath(nextLink, resource string) string {
	if nextLink == "" {
		return ""
	}
	if strings.HasPrefix(nextLink, "/") {
		return nextLink
	}
	if idx := strings.Index(nextLink, "/"+resource); idx >= 0 {
		return nextLink[idx:]
	}
	return "/" + nextLink
}
