package entity

import "time"

// Tipos de ejecución de conciliación.
const (
	RunTypeNightly = "NIGHTLY"
	RunTypeManual  = "MANUAL"
)

// Estados terminales de una ejecución. STARTED es el único estado no terminal;
// una ejecución que muere a medias queda STARTED y es segura de reintentar porque
// los documentos externos se upsertan por clave.
const (
	RunStatusStarted       = "STARTED"
	RunStatusSucceeded     = "SUCCEEDED"
	RunStatusPartial       = "PARTIAL"
	RunStatusFailed        = "FAILED"
	RunStatusNotConfigured = "NOT_CONFIGURED"
)

// RunError es un error capturado durante una fase de la ejecución.
type RunError struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// ReconciliationRun es el registro durable de una ejecución del motor de
// conciliación para una empresa: ventana revisada, conteos y errores por fase.
type ReconciliationRun struct {
	ID        string
	CompanyID string
	RunType   string
	Status    string

	WindowFrom time.Time
	WindowTo   time.Time

	DocsChecked       int
	ExternalDocsFound int
	Errors            []RunError

	StartedAt  time.Time
	FinishedAt *time.Time
}
