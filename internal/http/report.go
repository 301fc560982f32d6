package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/report"
)

type reportCreatePayload struct {
	ChipID string `json:"chip_id"`
}

type reportSearchPayload struct {
	ChipID     string  `json:"chip_id"`
	ClientName string  `json:"client_name"`
	State      string  `json:"state"`
	ReportDate *string `json:"report_date"`
}

type reportFinalizePayload struct {
	ReportState  string                     `json:"report_state"`
	Measurements []report.MeasurementUpdate `json:"measurements"`
}

// ReportCreate abre la revisión de calidad de una batería.
func (h *Handler) ReportCreate(w http.ResponseWriter, r *http.Request) {
	var payload reportCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	view, err := h.reports.Create(r.Context(), report.CreateInput{ChipID: payload.ChipID})
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusCreated, view, "Reporte creado.")
}

// ReportsSearch lista reportes aplicando filtros conjuntivos.
func (h *Handler) ReportsSearch(w http.ResponseWriter, r *http.Request) {
	var payload reportSearchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	filter := report.SearchFilter{
		ChipID:     payload.ChipID,
		ClientName: payload.ClientName,
		State:      payload.State,
	}
	if payload.ReportDate != nil && *payload.ReportDate != "" {
		parsed, err := time.Parse("2006-01-02", *payload.ReportDate)
		if err != nil {
			WriteErr(w, apperr.Invalid("Formato de fecha inválido."))
			return
		}
		filter.ReportDate = &parsed
	}

	items, err := h.reports.Search(r.Context(), filter)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, items, "")
}

// ReportsHistory devuelve el historial completo de reportes.
func (h *Handler) ReportsHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.History(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, items, "")
}

// ReportFinalize cierra la revisión con un estado terminal y el veredicto
// de cada magnitud.
func (h *Handler) ReportFinalize(w http.ResponseWriter, r *http.Request) {
	reportID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || reportID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de reporte inválido."))
		return
	}

	var payload reportFinalizePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	view, err := h.reports.Finalize(r.Context(), report.FinalizeInput{
		ReportID:     reportID,
		ReportState:  payload.ReportState,
		Measurements: payload.Measurements,
	})
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, view, "Reporte actualizado con mediciones.")
}

// ReportDetail devuelve la vista completa de un reporte.
func (h *Handler) ReportDetail(w http.ResponseWriter, r *http.Request) {
	reportID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || reportID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de reporte inválido."))
		return
	}

	detail, err := h.reports.Detail(r.Context(), reportID)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, detail, "Detalle del reporte obtenido.")
}

// ReportsAnalysis devuelve los porcentajes de aprobación sobre las baterías
// con reporte.
func (h *Handler) ReportsAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.reports.AnalysisPercentages(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, analysis, "")
}

// ReportsMetrics devuelve los porcentajes de venta y cobertura de reportes.
func (h *Handler) ReportsMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.reports.MetricsPercentages(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, metrics, "")
}
