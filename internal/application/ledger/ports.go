package ledger

import (
	"context"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación del lote, el registro
// en el libro, el recálculo del agregado y el documento se confirman juntos o
// no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
	) error) error

	RunRecepcion(ctx context.Context, fn func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		recepciones repository.RecepcionRepository,
	) error) error

	RunConsignacion(ctx context.Context, fn func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		consignaciones repository.ConsignacionRepository,
	) error) error

	RunConsumo(ctx context.Context, fn func(
		lotes repository.LoteRepository,
		movs repository.TransaccionRepository,
		inv repository.InventarioRepository,
		consumos repository.ConsumoRepository,
	) error) error
}
