package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "co-1"
	testUserID    = "user-1"
	testBodegaID  = "bodega-1"
	testCentroID  = "centro-1"
	testProductID = "prod-guia"
)

var testExpiry = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

type fixture struct {
	lotes          *fakeLotes
	movs           *fakeMovs
	inv            *fakeInv
	recepciones    *fakeRecepciones
	consignaciones *fakeConsignaciones
	consumos       *fakeConsumos

	recepcionUC    *ledger.RecepcionUseCase
	consignacionUC *ledger.ConsignacionUseCase
	consumoUC      *ledger.ConsumoUseCase
	queryUC        *ledger.QueryUseCase
	recomputeUC    *ledger.RecomputeUseCase
}

func newFixture() *fixture {
	f := &fixture{
		lotes:          newFakeLotes(),
		movs:           &fakeMovs{},
		inv:            newFakeInv(),
		recepciones:    newFakeRecepciones(),
		consignaciones: newFakeConsignaciones(),
		consumos:       newFakeConsumos(),
	}
	runner := &fakeTxRunner{
		lotes:          f.lotes,
		movs:           f.movs,
		inv:            f.inv,
		recepciones:    f.recepciones,
		consignaciones: f.consignaciones,
		consumos:       f.consumos,
	}
	centros := &fakeCentros{byID: map[string]*entity.Centro{
		testBodegaID: {ID: testBodegaID, CompanyID: testCompanyID, Name: "Bodega Central", Type: entity.CentroTypeBodega, WarehouseCode: "01", Active: true},
		testCentroID: {ID: testCentroID, CompanyID: testCompanyID, Name: "Centro Norte", Type: entity.CentroTypeCentro, WarehouseCode: "C01", Active: true},
		"ajeno":      {ID: "ajeno", CompanyID: "otra-empresa", Name: "Centro Ajeno", Type: entity.CentroTypeCentro, WarehouseCode: "X01", Active: true},
	}}
	productos := &fakeProductos{byID: map[string]*entity.Producto{
		testProductID: {ID: testProductID, CompanyID: testCompanyID, ItemCode: "GW-100", Name: "Guía hidrofílica 0.035", Active: true},
		"prod-ajeno":  {ID: "prod-ajeno", CompanyID: "otra-empresa", ItemCode: "ST-PX", Name: "Stent ajeno", Active: true},
	}}
	log := logger.New(logger.Config{Env: "production", Level: "error"})

	f.recepcionUC = ledger.NewRecepcionUseCase(runner, productos, centros, log)
	f.consignacionUC = ledger.NewConsignacionUseCase(runner, centros, log)
	f.consumoUC = ledger.NewConsumoUseCase(runner, centros, log)
	f.queryUC = ledger.NewQueryUseCase(f.lotes, f.inv, f.movs, f.consignaciones)
	f.recomputeUC = ledger.NewRecomputeUseCase(runner)
	return f
}

// recibe registra una recepción de una línea y devuelve el lote creado.
func (f *fixture) recibe(t *testing.T, lotNumber string, qty int64) *entity.Lote {
	t.Helper()
	rec, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Supplier:  "Proveedor Médico SAS",
		Items: []ledger.RecepcionItemInput{{
			ProductID: testProductID,
			LotNumber: lotNumber,
			Quantity:  qty,
			UnitCost:  decimal.NewFromInt(120),
			Expiry:    testExpiry,
		}},
	})
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)
	l, err := f.lotes.GetByID(rec.Items[0].LoteID)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

// consigna traslada qty del lote origen a centro y devuelve la consignación.
func (f *fixture) consigna(t *testing.T, loteID string, qty int64) *entity.Consignacion {
	t.Helper()
	cons, err := f.consignacionUC.Crear(context.Background(), ledger.ConsignacionInput{
		CompanyID:    testCompanyID,
		UserID:       testUserID,
		FromCentroID: testBodegaID,
		ToCentroID:   testCentroID,
		Items:        []ledger.ConsignacionItemInput{{LoteID: loteID, Quantity: qty}},
	})
	require.NoError(t, err)
	require.Len(t, cons.Items, 1)
	return cons
}

// checaInvariantes verifica el balance de particiones de todos los lotes y que
// cada fila agregada coincida con la suma de sus lotes.
func (f *fixture) checaInvariantes(t *testing.T) {
	t.Helper()
	for _, l := range f.lotes.all() {
		assert.True(t, l.PartitionsBalanced(),
			"particiones desbalanceadas en lote %s@%s: total=%d av=%d cg=%d cs=%d",
			l.LotNumber, l.CentroID, l.Total, l.Available, l.Consigned, l.Consumed)
	}
	for _, l := range f.lotes.all() {
		row, err := f.inv.Get(l.CompanyID, l.ProductID, l.CentroID)
		require.NoError(t, err)
		require.NotNil(t, row, "falta fila agregada para %s/%s", l.ProductID, l.CentroID)

		pares, err := f.lotes.ListByPair(l.CompanyID, l.ProductID, l.CentroID)
		require.NoError(t, err)
		var total, available, consigned, consumed int64
		for _, p := range pares {
			total += p.Total
			available += p.Available
			consigned += p.Consigned
			consumed += p.Consumed
		}
		assert.Equal(t, total, row.Total, "agregado.Total difiere de la suma de lotes")
		assert.Equal(t, available, row.Available)
		assert.Equal(t, consigned, row.Consigned)
		assert.Equal(t, consumed, row.Consumed)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRecepcion_CreaLoteYAgregado(t *testing.T) {
	f := newFixture()

	l := f.recibe(t, "LOT-A", 100)

	assert.Equal(t, int64(100), l.Total)
	assert.Equal(t, int64(100), l.Available)
	assert.Equal(t, int64(0), l.Consigned)
	assert.Equal(t, entity.LoteStatusActive, l.Status)
	assert.True(t, l.PartitionsBalanced())

	row, err := f.inv.Get(testCompanyID, testProductID, testBodegaID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(100), row.Total)
	assert.Equal(t, int64(100), row.Available)

	movs, err := f.movs.ListByCompany(testCompanyID, nil, nil, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.TxTypeWarehouseReceipt, movs[0].Type)
	assert.Equal(t, testBodegaID, movs[0].ToCentroID)
	assert.Equal(t, "Proveedor Médico SAS", movs[0].Detail.Supplier)
}

func TestRecepcion_BloqueSyncInicial(t *testing.T) {
	f := newFixture()

	rec, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Items: []ledger.RecepcionItemInput{{
			ProductID: testProductID, LotNumber: "LOT-A", Quantity: 10,
			UnitCost: decimal.NewFromInt(90), Expiry: testExpiry,
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OriginApp, rec.Origin)
	assert.False(t, rec.Sync.Pushed)
	assert.Equal(t, entity.SyncStatusPending, rec.Sync.Status)
	assert.Equal(t, entity.DocTypePurchaseDeliveryNote, rec.Sync.DocType)
}

func TestRecepcion_MismoLoteAcumula(t *testing.T) {
	f := newFixture()

	l1 := f.recibe(t, "LOT-A", 100)
	l2 := f.recibe(t, "LOT-A", 50)

	assert.Equal(t, l1.ID, l2.ID, "la misma tripleta (producto, lote, centro) debe reusar el lote")
	assert.Equal(t, int64(150), l2.Total)
	assert.Equal(t, int64(150), l2.Available)
	f.checaInvariantes(t)
}

func TestRecepcion_VencimientoDistintoConflicto(t *testing.T) {
	f := newFixture()
	f.recibe(t, "LOT-A", 100)

	_, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Items: []ledger.RecepcionItemInput{{
			ProductID: testProductID, LotNumber: "LOT-A", Quantity: 30,
			UnitCost: decimal.NewFromInt(120),
			Expiry:   testExpiry.AddDate(0, 3, 0),
		}},
	})

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "LOT-A", conflictErr.LotNumber)

	// La transacción se revierte: el lote queda como estaba.
	l, err := f.lotes.GetByKey(testCompanyID, testProductID, testBodegaID, "LOT-A")
	require.NoError(t, err)
	assert.Equal(t, int64(100), l.Total)
}

func TestRecepcion_MismaFechaDistintaHoraNoConflicto(t *testing.T) {
	f := newFixture()
	f.recibe(t, "LOT-A", 100)

	// Mismo día con otra hora: se compara solo la fecha.
	_, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Items: []ledger.RecepcionItemInput{{
			ProductID: testProductID, LotNumber: "LOT-A", Quantity: 30,
			UnitCost: decimal.NewFromInt(120),
			Expiry:   testExpiry.Add(14 * time.Hour),
		}},
	})
	require.NoError(t, err)

	l, err := f.lotes.GetByKey(testCompanyID, testProductID, testBodegaID, "LOT-A")
	require.NoError(t, err)
	assert.Equal(t, int64(130), l.Total)
}

func TestRecepcion_ProductoDeOtraEmpresa(t *testing.T) {
	f := newFixture()

	_, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Items: []ledger.RecepcionItemInput{{
			ProductID: "prod-ajeno", LotNumber: "LOT-X", Quantity: 10,
			UnitCost: decimal.NewFromInt(10), Expiry: testExpiry,
		}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecepcion_AtomicidadMultilinea(t *testing.T) {
	f := newFixture()
	f.recibe(t, "LOT-B", 20)

	// La primera línea es válida; la segunda choca por vencimiento. Nada debe
	// persistir de la primera.
	_, err := f.recepcionUC.Crear(context.Background(), ledger.RecepcionInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testBodegaID,
		Items: []ledger.RecepcionItemInput{
			{ProductID: testProductID, LotNumber: "LOT-NUEVO", Quantity: 10,
				UnitCost: decimal.NewFromInt(10), Expiry: testExpiry},
			{ProductID: testProductID, LotNumber: "LOT-B", Quantity: 5,
				UnitCost: decimal.NewFromInt(10), Expiry: testExpiry.AddDate(1, 0, 0)},
		},
	})
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	l, err := f.lotes.GetByKey(testCompanyID, testProductID, testBodegaID, "LOT-NUEVO")
	require.NoError(t, err)
	assert.Nil(t, l, "la línea válida no debe persistir si la transacción falla")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consignaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestConsignacion_ParticionesOrigenYDestino(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)

	cons := f.consigna(t, src.ID, 40)

	assert.Equal(t, entity.ConsignacionEnTransito, cons.Status)
	assert.Equal(t, entity.DocTypeStockTransfer, cons.Sync.DocType)
	assert.Equal(t, entity.SyncStatusPending, cons.Sync.Status)

	// Origen: disponible baja, consignado sube, el total no cambia.
	srcAfter, err := f.lotes.GetByID(src.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), srcAfter.Total)
	assert.Equal(t, int64(60), srcAfter.Available)
	assert.Equal(t, int64(40), srcAfter.Consigned)
	assert.Equal(t, entity.LoteStatusActive, srcAfter.Status)

	// Destino: lote espejo en el centro con disponible = consignado = total.
	dst, err := f.lotes.GetByID(cons.Items[0].LoteID)
	require.NoError(t, err)
	assert.Equal(t, testCentroID, dst.CentroID)
	assert.Equal(t, src.LotNumber, dst.LotNumber)
	assert.Equal(t, int64(40), dst.Total)
	assert.Equal(t, int64(40), dst.Available)
	assert.Equal(t, int64(40), dst.Consigned)

	f.checaInvariantes(t)
}

func TestConsignacion_StockInsuficiente(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	f.consigna(t, src.ID, 40)

	// 70 cabe en el total (100) pero no en el disponible (60).
	_, err := f.consignacionUC.Crear(context.Background(), ledger.ConsignacionInput{
		CompanyID:    testCompanyID,
		UserID:       testUserID,
		FromCentroID: testBodegaID,
		ToCentroID:   testCentroID,
		Items:        []ledger.ConsignacionItemInput{{LoteID: src.ID, Quantity: 70}},
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(70), stockErr.Requested)
	assert.Equal(t, int64(60), stockErr.Available)
}

func TestConsignacion_CentroEquivocado(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)

	_, err := f.consignacionUC.Crear(context.Background(), ledger.ConsignacionInput{
		CompanyID:    testCompanyID,
		UserID:       testUserID,
		FromCentroID: testCentroID, // el lote está en bodega
		ToCentroID:   testBodegaID,
		Items:        []ledger.ConsignacionItemInput{{LoteID: src.ID, Quantity: 10}},
	})

	var locErr *domain.LocationMismatchError
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, testBodegaID, locErr.ActualCentro)
}

func TestConsignacion_RepetidaAcumulaEnDestino(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)

	c1 := f.consigna(t, src.ID, 30)
	c2 := f.consigna(t, src.ID, 20)

	assert.Equal(t, c1.Items[0].LoteID, c2.Items[0].LoteID,
		"el mismo lote consignado al mismo centro debe reusar el lote espejo")

	dst, err := f.lotes.GetByID(c2.Items[0].LoteID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), dst.Total)
	assert.Equal(t, int64(50), dst.Available)
	assert.Equal(t, int64(50), dst.Consigned)
	f.checaInvariantes(t)
}

func TestConfirmar_SinDiscrepancias(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)

	confirmed, err := f.consignacionUC.Confirmar(context.Background(), ledger.ConfirmacionInput{
		CompanyID:      testCompanyID,
		UserID:         "user-centro",
		ConsignacionID: cons.ID,
		Received:       map[string]int64{cons.Items[0].LoteID: 40},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ConsignacionRecibida, confirmed.Status)
	assert.Equal(t, "user-centro", confirmed.ConfirmedBy)
	require.NotNil(t, confirmed.Items[0].QuantityReceived)
	assert.Equal(t, int64(40), *confirmed.Items[0].QuantityReceived)
	assert.False(t, confirmed.HasDiscrepancies())
}

func TestConfirmar_RegistraDiscrepancia(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)

	confirmed, err := f.consignacionUC.Confirmar(context.Background(), ledger.ConfirmacionInput{
		CompanyID:      testCompanyID,
		UserID:         "user-centro",
		ConsignacionID: cons.ID,
		Received:       map[string]int64{cons.Items[0].LoteID: 35},
	})
	require.NoError(t, err)

	assert.True(t, confirmed.HasDiscrepancies())
	// La discrepancia queda registrada pero el stock del lote no se toca solo.
	dst, err := f.lotes.GetByID(cons.Items[0].LoteID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), dst.Available)
}

func TestConfirmar_DosVecesFalla(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)
	received := map[string]int64{cons.Items[0].LoteID: 40}

	_, err := f.consignacionUC.Confirmar(context.Background(), ledger.ConfirmacionInput{
		CompanyID: testCompanyID, UserID: testUserID, ConsignacionID: cons.ID, Received: received,
	})
	require.NoError(t, err)

	_, err = f.consignacionUC.Confirmar(context.Background(), ledger.ConfirmacionInput{
		CompanyID: testCompanyID, UserID: testUserID, ConsignacionID: cons.ID, Received: received,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfirmar_FaltaLineaFalla(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)

	_, err := f.consignacionUC.Confirmar(context.Background(), ledger.ConfirmacionInput{
		CompanyID:      testCompanyID,
		UserID:         testUserID,
		ConsignacionID: cons.ID,
		Received:       map[string]int64{},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPendientes_MarcaAntiguas(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 10)

	// Se envejece la consignación por debajo del repositorio.
	stored, err := f.consignaciones.GetByID(cons.ID)
	require.NoError(t, err)
	stored.CreatedAt = time.Now().Add(-entity.ConsignacionGracePeriod - time.Hour)
	require.NoError(t, f.consignaciones.Update(stored))

	pendientes, err := f.queryUC.ConsignacionesPendientes(context.Background(), testCompanyID, 50, 0)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.True(t, pendientes[0].EsAntigua)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumos
// ──────────────────────────────────────────────────────────────────────────────

func TestConsumo_DebitaLoteDelCentro(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)
	dstID := cons.Items[0].LoteID

	consumo, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testCentroID,
		Patient:   "HC-44812",
		Procedure: "angioplastia",
		Items: []ledger.ConsumoItemInput{{
			LoteID: dstID, Quantity: 10, UnitPrice: decimal.NewFromInt(250),
		}},
	})
	require.NoError(t, err)

	dst, err := f.lotes.GetByID(dstID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), dst.Total)
	assert.Equal(t, int64(30), dst.Available)
	assert.Equal(t, int64(30), dst.Consigned)
	assert.Equal(t, int64(10), dst.Consumed)
	assert.Equal(t, entity.LoteStatusActive, dst.Status)

	assert.Equal(t, 1, consumo.TotalItems)
	assert.Equal(t, int64(10), consumo.TotalQuantity)
	assert.True(t, decimal.NewFromInt(2500).Equal(consumo.TotalValue))
	assert.Equal(t, entity.DocTypeDeliveryNote, consumo.Sync.DocType)

	f.checaInvariantes(t)
}

func TestConsumo_AgotaLoteDepleted(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)
	dstID := cons.Items[0].LoteID

	_, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testCentroID,
		Items: []ledger.ConsumoItemInput{{
			LoteID: dstID, Quantity: 40, UnitPrice: decimal.NewFromInt(250),
		}},
	})
	require.NoError(t, err)

	dst, err := f.lotes.GetByID(dstID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dst.Available)
	assert.Equal(t, int64(0), dst.Consigned)
	assert.Equal(t, int64(40), dst.Consumed)
	assert.Equal(t, entity.LoteStatusDepleted, dst.Status)
	assert.True(t, dst.PartitionsBalanced())
}

func TestConsumo_StockInsuficiente(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	cons := f.consigna(t, src.ID, 40)

	_, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testCentroID,
		Items: []ledger.ConsumoItemInput{{
			LoteID: cons.Items[0].LoteID, Quantity: 45, UnitPrice: decimal.NewFromInt(250),
		}},
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(40), stockErr.Available)
}

func TestConsumo_CentroEquivocado(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)

	// El lote sigue en bodega; consumirlo desde el centro debe fallar.
	_, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testCentroID,
		Items: []ledger.ConsumoItemInput{{
			LoteID: src.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(250),
		}},
	})

	var locErr *domain.LocationMismatchError
	require.ErrorAs(t, err, &locErr)
}

func TestConsumo_GuardiaDeConsistencia(t *testing.T) {
	f := newFixture()

	// Lote corrupto plantado directo en el repositorio: disponible sin respaldo
	// de consignado. El guardia debe rechazar el consumo.
	corrupt := &entity.Lote{
		ID:        "lote-corrupto",
		CompanyID: testCompanyID,
		ProductID: testProductID,
		CentroID:  testCentroID,
		LotNumber: "LOT-MAL",
		Expiry:    testExpiry,
		Total:     10,
		Available: 5,
		Consigned: 2,
		Status:    entity.LoteStatusActive,
	}
	require.NoError(t, f.lotes.Create(corrupt))

	_, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID,
		UserID:    testUserID,
		CentroID:  testCentroID,
		Items: []ledger.ConsumoItemInput{{
			LoteID: corrupt.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(100),
		}},
	})

	var consErr *domain.ConsistencyError
	require.ErrorAs(t, err, &consErr)
	assert.Equal(t, "LOT-MAL", consErr.LotNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes de extremo a extremo y recompute
// ──────────────────────────────────────────────────────────────────────────────

func TestSecuenciaCompleta_InvariantesSiempre(t *testing.T) {
	f := newFixture()

	src := f.recibe(t, "LOT-A", 100)
	f.checaInvariantes(t)

	f.recibe(t, "LOT-A", 50)
	f.checaInvariantes(t)

	cons := f.consigna(t, src.ID, 60)
	f.checaInvariantes(t)

	dstID := cons.Items[0].LoteID
	_, err := f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID, UserID: testUserID, CentroID: testCentroID,
		Items: []ledger.ConsumoItemInput{{LoteID: dstID, Quantity: 25, UnitPrice: decimal.NewFromInt(300)}},
	})
	require.NoError(t, err)
	f.checaInvariantes(t)

	f.consigna(t, src.ID, 30)
	f.checaInvariantes(t)

	_, err = f.consumoUC.Registrar(context.Background(), ledger.ConsumoInput{
		CompanyID: testCompanyID, UserID: testUserID, CentroID: testCentroID,
		Items: []ledger.ConsumoItemInput{{LoteID: dstID, Quantity: 65, UnitPrice: decimal.NewFromInt(300)}},
	})
	require.NoError(t, err)
	f.checaInvariantes(t)

	// El lote del centro quedó agotado.
	dst, err := f.lotes.GetByID(dstID)
	require.NoError(t, err)
	assert.Equal(t, entity.LoteStatusDepleted, dst.Status)
	assert.Equal(t, int64(90), dst.Consumed)
}

func TestRecompute_Idempotente(t *testing.T) {
	f := newFixture()
	src := f.recibe(t, "LOT-A", 100)
	f.consigna(t, src.ID, 40)

	require.NoError(t, f.recomputeUC.Recompute(context.Background(), testCompanyID, testProductID, testBodegaID))
	first, err := f.inv.Get(testCompanyID, testProductID, testBodegaID)
	require.NoError(t, err)

	require.NoError(t, f.recomputeUC.Recompute(context.Background(), testCompanyID, testProductID, testBodegaID))
	second, err := f.inv.Get(testCompanyID, testProductID, testBodegaID)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Available, second.Available)
	assert.Equal(t, first.Consigned, second.Consigned)
	assert.Equal(t, first.Consumed, second.Consumed)
	assert.Equal(t, int64(100), second.Total)
	assert.Equal(t, int64(60), second.Available)
	assert.Equal(t, int64(40), second.Consigned)
}
