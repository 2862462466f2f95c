package dto

// SetGoLiveRequest cuerpo de PUT /api/reconciliation/config/golive.
type SetGoLiveRequest struct {
	GoLiveDate string `json:"go_live_date"` // YYYY-MM-DD
}

// ResolveExternalDocRequest cuerpo de PUT /api/reconciliation/documents/:id.
// Resolution debe ser ACKNOWLEDGED, IMPORTED o IGNORED.
type ResolveExternalDocRequest struct {
	Resolution string `json:"resolution"`
}
