package ledger

import (
	"context"

	"time"

	"github.com/jlvas-cloud/vasculares-sub002/internal/domain"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
)

// RecomputeUseCase expone el recálculo del agregado como operación de reparación
// manual. Idempotente: ejecutarlo dos veces seguidas deja el mismo resultado.
type RecomputeUseCase struct {
	txRunner TxRunner
}

// NewRecomputeUseCase construye el caso de uso.
func NewRecomputeUseCase(txRunner TxRunner) *RecomputeUseCase {
	return &RecomputeUseCase{txRunner: txRunner}
}

// Recompute reconstruye la fila agregada de un par (producto, centro).
func (uc *RecomputeUseCase) Recompute(ctx context.Context, companyID, productID, centroID string) error {
	if companyID == "" || productID == "" || centroID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		lotes repository.LoteRepository,
		_ repository.TransaccionRepository,
		inv repository.InventarioRepository,
	) error {
		return recomputeInventario(lotes, inv, companyID, productID, centroID, time.Now())
	})
}
