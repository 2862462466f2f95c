package repository

import "github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"

// DocumentoExternoRepository define el puerto de documentos externos descubiertos.
type DocumentoExternoRepository interface {
	// Upsert inserta o actualiza por la clave externa (company, doc_type, doc_entry).
	// Devuelve true si el documento no existía (inserción nueva): el motor de
	// conciliación cuenta solo las inserciones nuevas como hallazgos.
	Upsert(d *entity.DocumentoExterno) (bool, error)
	GetByID(id string) (*entity.DocumentoExterno, error)
	List(companyID, resolution string, limit, offset int) ([]*entity.DocumentoExterno, error)
	UpdateResolution(id, resolution string) error
}
