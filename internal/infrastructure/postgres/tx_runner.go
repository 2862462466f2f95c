package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción con los repos del núcleo del ledger.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewLoteRepository(q), NewTransaccionRepository(q), NewInventarioRepository(q))
	})
}

// RunRecepcion añade el repo de recepciones a la transacción.
func (r *TxRunner) RunRecepcion(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	recepciones repository.RecepcionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewLoteRepository(q), NewTransaccionRepository(q), NewInventarioRepository(q), NewRecepcionRepository(q))
	})
}

// RunConsignacion añade el repo de consignaciones a la transacción.
func (r *TxRunner) RunConsignacion(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	consignaciones repository.ConsignacionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewLoteRepository(q), NewTransaccionRepository(q), NewInventarioRepository(q), NewConsignacionRepository(q))
	})
}

// RunConsumo añade el repo de consumos a la transacción.
func (r *TxRunner) RunConsumo(ctx context.Context, fn func(
	lotes repository.LoteRepository,
	movs repository.TransaccionRepository,
	inv repository.InventarioRepository,
	consumos repository.ConsumoRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewLoteRepository(q), NewTransaccionRepository(q), NewInventarioRepository(q), NewConsumoRepository(q))
	})
}
