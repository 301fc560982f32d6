package report

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
)

var (
	// ErrNotFound indica que el reporte no existe.
	ErrNotFound = errors.New("reporte no encontrado")
	// ErrDuplicate indica que la batería ya tiene un reporte.
	ErrDuplicate = errors.New("la batería ya tiene un reporte")
	// ErrAlreadyFinalized indica que el reporte ya salió de Pendiente.
	ErrAlreadyFinalized = errors.New("el reporte ya fue finalizado")
)

// Report es el registro único de revisión de calidad de una batería.
// Nace Pendiente y transiciona una sola vez a Aprobado o Desaprobado.
type Report struct {
	ID         int
	StatusID   int
	ReportDate time.Time
	FileName   uuid.UUID
	BatteryID  int
}

// MeasurementStatus es el veredicto por medición registrado al finalizar
// un reporte. MeasurementID es una referencia blanda (sin FK): el join con
// la medición se resuelve en código de aplicación.
type MeasurementStatus struct {
	ID            int
	MeasurementID int
	StatusID      int
	Comment       string
	ReportID      int
}

// CreateInput identifica la batería a reportar por su chip.
type CreateInput struct {
	ChipID string
}

// View es la proyección del reporte recién creado o actualizado.
type View struct {
	ID          int            `json:"id"`
	ChipID      string         `json:"chip_id"`
	ClientID    int            `json:"client_id,omitempty"`
	ReportState string         `json:"report_state"`
	ReportDate  time.Time      `json:"report_date"`
	Client      *client.Client `json:"client,omitempty"`
}

// SearchFilter filtra el listado de reportes; los campos en blanco no
// aplican y los presentes se combinan como conjunción.
type SearchFilter struct {
	ChipID     string
	ClientName string
	State      string
	ReportDate *time.Time
}

// SearchItem es la proyección plana del listado de reportes.
type SearchItem struct {
	ID          int       `json:"id"`
	ChipID      string    `json:"chip_id"`
	ClientName  string    `json:"client_name"`
	ReportState string    `json:"report_state"`
	ReportDate  time.Time `json:"report_date"`
}

// HistoryItem agrega el tipo de batería al listado histórico.
type HistoryItem struct {
	SearchItem
	BatteryType string `json:"battery_type"`
}

// MeasurementUpdate es el veredicto pedido para una medición.
type MeasurementUpdate struct {
	MeasurementID int    `json:"measurement_id"`
	Status        string `json:"status"`
	Comment       string `json:"comment"`
}

// FinalizeInput es la finalización del reporte: un estado terminal más un
// veredicto por medición.
type FinalizeInput struct {
	ReportID     int
	ReportState  string
	Measurements []MeasurementUpdate
}

// MeasurementVerdict es una medición con su veredicto, en la vista de
// detalle.
type MeasurementVerdict struct {
	ID              int       `json:"id"`
	Magnitude       string    `json:"magnitude"`
	Status          string    `json:"status"`
	Comment         string    `json:"comment"`
	MeasurementDate time.Time `json:"measurement_date"`
}

// Detail es la vista completa de un reporte. Las relaciones opcionales
// ausentes se presentan con defaults, nunca como falla.
type Detail struct {
	ID          int       `json:"id"`
	ChipID      string    `json:"chip_id"`
	ReportState string    `json:"report_state"`
	ReportDate  time.Time `json:"report_date"`

	ClientID    int    `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`

	BatteryType      string     `json:"battery_type"`
	BatteryWorkOrder string     `json:"battery_work_order"`
	SaleDate         *time.Time `json:"sale_date,omitempty"`
	RegisteredDate   time.Time  `json:"registered_date"`

	Measurements []MeasurementVerdict `json:"measurements"`
}

// Analysis son los porcentajes de baterías aprobadas/desaprobadas sobre el
// total evaluado.
type Analysis struct {
	ApprovedPercentage float64 `json:"approved_percentage"`
	RejectedPercentage float64 `json:"rejected_percentage"`
}

// Metrics es el embudo de venta: vendidas sobre el total y vendidas con
// reporte sobre las vendidas.
type Metrics struct {
	SoldPercentage           float64 `json:"sold_percentage"`
	SoldWithReportPercentage float64 `json:"sold_with_report_percentage"`
}
