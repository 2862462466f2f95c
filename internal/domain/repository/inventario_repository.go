package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// InventarioRepository define el puerto de la vista agregada por (producto, centro).
// El agregador sobrescribe la fila completa; nadie más la escribe.
type InventarioRepository interface {
	// Get devuelve nil sin error si el par no tiene fila todavía.
	Get(companyID, productID, centroID string) (*entity.Inventario, error)
	Upsert(inv *entity.Inventario) error
	ListByCentro(companyID, centroID string) ([]*entity.Inventario, error)
}
