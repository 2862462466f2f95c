package ledger_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// Fakes en memoria de los puertos de persistencia. El TxRunner falso toma un
// snapshot antes de cada transacción y lo restaura si la función falla, para
// poder verificar atomicidad igual que con una transacción real.

// ── Lotes ─────────────────────────────────────────────────────────────────────

type fakeLotes struct {
	mu   sync.Mutex
	byID map[string]*entity.Lote
}

func newFakeLotes() *fakeLotes {
	return &fakeLotes{byID: make(map[string]*entity.Lote)}
}

func cloneLote(l *entity.Lote) *entity.Lote {
	c := *l
	return &c
}

func (f *fakeLotes) snapshot() map[string]*entity.Lote {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := make(map[string]*entity.Lote, len(f.byID))
	for k, v := range f.byID {
		s[k] = cloneLote(v)
	}
	return s
}

func (f *fakeLotes) restore(s map[string]*entity.Lote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = s
}

func (f *fakeLotes) GetByID(id string) (*entity.Lote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneLote(l), nil
}

func (f *fakeLotes) GetByIDForUpdate(id string) (*entity.Lote, error) {
	return f.GetByID(id)
}

func (f *fakeLotes) GetByKey(companyID, productID, centroID, lotNumber string) (*entity.Lote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.byID {
		if l.CompanyID == companyID && l.ProductID == productID &&
			l.CentroID == centroID && l.LotNumber == lotNumber {
			return cloneLote(l), nil
		}
	}
	return nil, nil
}

func (f *fakeLotes) GetByKeyForUpdate(companyID, productID, centroID, lotNumber string) (*entity.Lote, error) {
	return f.GetByKey(companyID, productID, centroID, lotNumber)
}

func (f *fakeLotes) ListByPair(companyID, productID, centroID string) ([]*entity.Lote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Lote
	for _, l := range f.byID {
		if l.CompanyID == companyID && l.ProductID == productID && l.CentroID == centroID {
			out = append(out, cloneLote(l))
		}
	}
	return out, nil
}

func (f *fakeLotes) ListByProduct(companyID, productID string) ([]*entity.Lote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Lote
	for _, l := range f.byID {
		if l.CompanyID == companyID && l.ProductID == productID {
			out = append(out, cloneLote(l))
		}
	}
	return out, nil
}

func (f *fakeLotes) Create(l *entity.Lote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[l.ID] = cloneLote(l)
	return nil
}

func (f *fakeLotes) Update(l *entity.Lote) error {
	return f.Create(l)
}

// all devuelve todos los lotes (solo para aserciones).
func (f *fakeLotes) all() []*entity.Lote {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Lote
	for _, l := range f.byID {
		out = append(out, cloneLote(l))
	}
	return out
}

// ── Libro de movimientos ──────────────────────────────────────────────────────

type fakeMovs struct {
	mu   sync.Mutex
	list []*entity.Transaccion
}

func (f *fakeMovs) Create(t *entity.Transaccion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *t
	f.list = append(f.list, &c)
	return nil
}

func (f *fakeMovs) GetByID(id string) (*entity.Transaccion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.list {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeMovs) ListByCompany(companyID string, from, to *time.Time, limit, offset int) ([]*entity.Transaccion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Transaccion
	for _, t := range f.list {
		if t.CompanyID != companyID {
			continue
		}
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeMovs) ListByLote(loteID string) ([]*entity.Transaccion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Transaccion
	for _, t := range f.list {
		if t.LoteID == loteID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── Agregado de inventario ────────────────────────────────────────────────────

type fakeInv struct {
	mu   sync.Mutex
	rows map[string]*entity.Inventario
}

func newFakeInv() *fakeInv {
	return &fakeInv{rows: make(map[string]*entity.Inventario)}
}

func invKey(companyID, productID, centroID string) string {
	return strings.Join([]string{companyID, productID, centroID}, "|")
}

func (f *fakeInv) Get(companyID, productID, centroID string) (*entity.Inventario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[invKey(companyID, productID, centroID)]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (f *fakeInv) Upsert(inv *entity.Inventario) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *inv
	f.rows[invKey(inv.CompanyID, inv.ProductID, inv.CentroID)] = &c
	return nil
}

func (f *fakeInv) ListByCentro(companyID, centroID string) ([]*entity.Inventario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Inventario
	for _, r := range f.rows {
		if r.CompanyID == companyID && r.CentroID == centroID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── Bloque de sincronización compartido ───────────────────────────────────────

// fakeSyncStates implementa repository.SyncTracker sobre un mapa con mutex.
// El CAS del lock replica la semántica del UPDATE condicional de PostgreSQL.
type fakeSyncStates struct {
	mu     sync.Mutex
	states map[string]entity.SyncInfo
	owner  map[string]string // id → companyID, para ListRetryable
}

func newFakeSyncStates() *fakeSyncStates {
	return &fakeSyncStates{
		states: make(map[string]entity.SyncInfo),
		owner:  make(map[string]string),
	}
}

func (f *fakeSyncStates) put(id, companyID string, s entity.SyncInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = s
	f.owner[id] = companyID
}

func (f *fakeSyncStates) get(id string) (entity.SyncInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[id]
	return s, ok
}

func (f *fakeSyncStates) UpdateSync(id string, sync entity.SyncInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = sync
	return nil
}

func (f *fakeSyncStates) ClaimRetry(id string, lease time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[id]
	if !ok {
		return false, nil
	}
	if s.Status != entity.SyncStatusFailed && s.Status != entity.SyncStatusRetrying {
		return false, nil
	}
	if s.Retrying {
		if s.ClaimedAt == nil || time.Since(*s.ClaimedAt) < lease {
			return false, nil
		}
	}
	now := time.Now()
	s.Retrying = true
	s.Status = entity.SyncStatusRetrying
	s.ClaimedAt = &now
	f.states[id] = s
	return true, nil
}

func (f *fakeSyncStates) ReleaseRetry(id string, sync entity.SyncInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sync.Retrying = false
	sync.ClaimedAt = nil
	sync.RetryCount = f.states[id].RetryCount + 1
	f.states[id] = sync
	return nil
}

func (f *fakeSyncStates) ListRetryable(companyID string, lease time.Duration, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id, s := range f.states {
		if f.owner[id] != companyID || s.Status != entity.SyncStatusFailed {
			continue
		}
		if s.Retrying && s.ClaimedAt != nil && time.Since(*s.ClaimedAt) < lease {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSyncStates) ExistsByExternalDoc(companyID, docType string, docEntry int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.states {
		if f.owner[id] == companyID && s.DocType == docType && s.DocEntry == docEntry && s.Pushed {
			return true, nil
		}
	}
	return false, nil
}

// ── Documentos ────────────────────────────────────────────────────────────────

type fakeRecepciones struct {
	*fakeSyncStates
	mu   sync.Mutex
	byID map[string]*entity.Recepcion
}

func newFakeRecepciones() *fakeRecepciones {
	return &fakeRecepciones{fakeSyncStates: newFakeSyncStates(), byID: make(map[string]*entity.Recepcion)}
}

func (f *fakeRecepciones) Create(r *entity.Recepcion) error {
	f.mu.Lock()
	c := *r
	f.byID[r.ID] = &c
	f.mu.Unlock()
	f.put(r.ID, r.CompanyID, r.Sync)
	return nil
}

func (f *fakeRecepciones) GetByID(id string) (*entity.Recepcion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *r
	if s, ok := f.get(id); ok {
		c.Sync = s
	}
	return &c, nil
}

func (f *fakeRecepciones) ListByCompany(companyID string, limit, offset int) ([]*entity.Recepcion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Recepcion
	for _, r := range f.byID {
		if r.CompanyID == companyID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeConsignaciones struct {
	*fakeSyncStates
	mu   sync.Mutex
	byID map[string]*entity.Consignacion
}

func newFakeConsignaciones() *fakeConsignaciones {
	return &fakeConsignaciones{fakeSyncStates: newFakeSyncStates(), byID: make(map[string]*entity.Consignacion)}
}

func cloneConsignacion(c *entity.Consignacion) *entity.Consignacion {
	cc := *c
	cc.Items = append([]entity.ConsignacionItem(nil), c.Items...)
	return &cc
}

func (f *fakeConsignaciones) Create(c *entity.Consignacion) error {
	f.mu.Lock()
	f.byID[c.ID] = cloneConsignacion(c)
	f.mu.Unlock()
	f.put(c.ID, c.CompanyID, c.Sync)
	return nil
}

func (f *fakeConsignaciones) GetByID(id string) (*entity.Consignacion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	out := cloneConsignacion(c)
	if s, ok := f.get(id); ok {
		out.Sync = s
	}
	return out, nil
}

func (f *fakeConsignaciones) GetByIDForUpdate(id string) (*entity.Consignacion, error) {
	return f.GetByID(id)
}

func (f *fakeConsignaciones) Update(c *entity.Consignacion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[c.ID] = cloneConsignacion(c)
	return nil
}

func (f *fakeConsignaciones) ListByCompany(companyID, status string, limit, offset int) ([]*entity.Consignacion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Consignacion
	for _, c := range f.byID {
		if c.CompanyID != companyID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, cloneConsignacion(c))
	}
	return out, nil
}

type fakeConsumos struct {
	*fakeSyncStates
	mu   sync.Mutex
	byID map[string]*entity.Consumo
}

func newFakeConsumos() *fakeConsumos {
	return &fakeConsumos{fakeSyncStates: newFakeSyncStates(), byID: make(map[string]*entity.Consumo)}
}

func (f *fakeConsumos) Create(c *entity.Consumo) error {
	f.mu.Lock()
	cc := *c
	cc.Items = append([]entity.ConsumoItem(nil), c.Items...)
	f.byID[c.ID] = &cc
	f.mu.Unlock()
	f.put(c.ID, c.CompanyID, c.Sync)
	return nil
}

func (f *fakeConsumos) GetByID(id string) (*entity.Consumo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cc := *c
	cc.Items = append([]entity.ConsumoItem(nil), c.Items...)
	if s, ok := f.get(id); ok {
		cc.Sync = s
	}
	return &cc, nil
}

func (f *fakeConsumos) ListByCentro(companyID, centroID string, limit, offset int) ([]*entity.Consumo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Consumo
	for _, c := range f.byID {
		if c.CompanyID == companyID && c.CentroID == centroID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type fakeCentros struct {
	byID map[string]*entity.Centro
}

func (f *fakeCentros) GetByID(id string) (*entity.Centro, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cc := *c
	return &cc, nil
}

func (f *fakeCentros) ListByCompany(companyID string) ([]*entity.Centro, error) {
	var out []*entity.Centro
	for _, c := range f.byID {
		if c.CompanyID == companyID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

type fakeProductos struct {
	byID map[string]*entity.Producto
}

func (f *fakeProductos) GetByID(id string) (*entity.Producto, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	pp := *p
	return &pp, nil
}

func (f *fakeProductos) GetByItemCode(companyID, itemCode string) (*entity.Producto, error) {
	for _, p := range f.byID {
		if p.CompanyID == companyID && p.ItemCode == itemCode {
			pp := *p
			return &pp, nil
		}
	}
	return nil, nil
}

func (f *fakeProductos) ListByCompany(companyID string) ([]*entity.Producto, error) {
	var out []*entity.Producto
	for _, p := range f.byID {
		if p.CompanyID == companyID {
			pp := *p
			out = append(out, &pp)
		}
	}
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner pasa los repos en memoria a la función y restaura el snapshot de
// lotes e inventario si la función devuelve error, simulando el rollback.
type fakeTxRunner struct {
	lotes          *fakeLotes
	movs           *fakeMovs
	inv            *fakeInv
	recepciones    *fakeRecepciones
	consignaciones *fakeConsignaciones
	consumos       *fakeConsumos
}

func (r *fakeTxRunner) rollbackOnError(fn func() error) error {
	lotesSnap := r.lotes.snapshot()
	if err := fn(); err != nil {
		r.lotes.restore(lotesSnap)
		return err
	}
	return nil
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
) error) error {
	return r.rollbackOnError(func() error { return fn(r.lotes, r.movs, r.inv) })
}

func (r *fakeTxRunner) RunRecepcion(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	recepciones repository.RecepcionRepository,
) error) error {
	return r.rollbackOnError(func() error { return fn(r.lotes, r.movs, r.inv, r.recepciones) })
}

func (r *fakeTxRunner) RunConsignacion(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	consignaciones repository.ConsignacionRepository,
) error) error {
	return r.rollbackOnError(func() error { return fn(r.lotes, r.movs, r.inv, r.consignaciones) })
}

func (r *fakeTxRunner) RunConsumo(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	consumos repository.ConsumoRepository,
) error) error {
	return r.rollbackOnError(func() error { return fn(r.lotes, r.movs, r.inv, r.consumos) })
}
