package http

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/battery"
)

type batteryAssociatePayload struct {
	ChipID    string `json:"chip_id"`
	WorkOrder string `json:"work_order"`
	SaleDate  string `json:"sale_date"`
	ClientID  int    `json:"client_id"`
}

type batterySearchPayload struct {
	ChipID     string  `json:"chip_id"`
	ClientName string  `json:"client_name"`
	SaleDate   *string `json:"sale_date"`
}

// BatteryAssociate vincula una batería ya ingresada a un cliente con su
// orden de trabajo y fecha de venta.
func (h *Handler) BatteryAssociate(w http.ResponseWriter, r *http.Request) {
	var payload batteryAssociatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	saleDate, err := time.Parse("2006-01-02", payload.SaleDate)
	if err != nil {
		WriteErr(w, apperr.Invalid("Formato de fecha inválido."))
		return
	}

	input := battery.AssociateInput{
		ChipID:    strings.TrimSpace(payload.ChipID),
		WorkOrder: strings.TrimSpace(payload.WorkOrder),
		SaleDate:  saleDate,
		ClientID:  payload.ClientID,
	}
	if err := h.batteries.Associate(r.Context(), input); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusCreated, nil, "Bateria asociada al cliente.")
}

// BatteriesSearch lista las baterías vendidas con su cliente y el estado
// del reporte asociado.
func (h *Handler) BatteriesSearch(w http.ResponseWriter, r *http.Request) {
	response, err := h.batteries.Search(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, response, "")
}

// BatteriesSearchWithFilter lista baterías vendidas aplicando filtros
// conjuntivos.
func (h *Handler) BatteriesSearchWithFilter(w http.ResponseWriter, r *http.Request) {
	var payload batterySearchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	filter := battery.SearchFilter{
		ChipID:     payload.ChipID,
		ClientName: payload.ClientName,
	}
	if payload.SaleDate != nil && *payload.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", *payload.SaleDate)
		if err != nil {
			WriteErr(w, apperr.Invalid("Formato de fecha inválido."))
			return
		}
		filter.SaleDate = &parsed
	}

	response, err := h.batteries.SearchWithFilter(r.Context(), filter)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, response, "")
}

// BatteryDetail devuelve una batería con sus mediciones y puntos crudos.
func (h *Handler) BatteryDetail(w http.ResponseWriter, r *http.Request) {
	batteryID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || batteryID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de batería inválido."))
		return
	}

	detail, err := h.batteries.Detail(r.Context(), batteryID)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, detail, "")
}

// BatteryRawDataUpload ingresa una medición cruda desde un CSV del banco
// de pruebas. El multipart trae los metadatos y el archivo con los pares
// hora,valor.
func (h *Handler) BatteryRawDataUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		WriteErr(w, apperr.Invalid("Formulario inválido."))
		return
	}

	measurementDate, err := time.Parse("2006-01-02", r.FormValue("measurement_date"))
	if err != nil {
		WriteErr(w, apperr.Invalid("Formato de fecha inválido."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErr(w, apperr.Conflict("Archivo no proporcionado."))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		WriteErr(w, apperr.Conflict("Solo archivos CSV permitidos."))
		return
	}

	points, err := parseCSVPoints(file)
	if err != nil {
		WriteErr(w, apperr.Invalid("No se pudo leer el archivo CSV."))
		return
	}

	input := battery.RawDataInput{
		ChipID:          strings.TrimSpace(r.FormValue("chip_id")),
		Type:            strings.TrimSpace(r.FormValue("type")),
		Magnitude:       strings.TrimSpace(r.FormValue("magnitude")),
		MeasurementDate: measurementDate,
		Points:          points,
	}
	if err := h.batteries.IngestRawData(r.Context(), input); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "Las mediciones fueron cargadas correctamente.")
}

// parseCSVPoints lee pares hora,valor. Las filas malformadas se descartan
// en lugar de abortar la carga completa.
func parseCSVPoints(r io.Reader) (map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	points := make(map[string]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != 2 {
			continue
		}

		key := strings.TrimSpace(record[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil || key == "" {
			continue
		}
		points[key] = value
	}

	return points, nil
}
