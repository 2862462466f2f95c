package entity

import "time"

// Company representa una empresa (tenant). Todo acceso a datos se acota por
// CompanyID explícito; nunca hay un tenant ambiente.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Active    bool
	CreatedAt time.Time
}

// CompanyConfig es la configuración por empresa. GoLiveDate marca el corte:
// documentos del ERP anteriores se presumen preexistentes y la conciliación los
// excluye. Se fija una vez por la carga inicial o manualmente por un operador.
type CompanyConfig struct {
	CompanyID  string
	GoLiveDate *time.Time
	UpdatedBy  string
	UpdatedAt  time.Time
}
