package battery

import (
	"time"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
)

// Battery representa una batería física identificada por su chip.
// La asociación a un cliente (venta) es opcional y se fija una sola vez.
type Battery struct {
	ID             int        `json:"id"`
	ChipID         string     `json:"chip_id"`
	WorkOrder      *string    `json:"work_order,omitempty"`
	Type           string     `json:"type"`
	SaleDate       *time.Time `json:"sale_date,omitempty"`
	RegisteredDate time.Time  `json:"registered_date"`
	ClientID       *int       `json:"client_id,omitempty"`
}

// WithClient agrega la batería con su cliente (si lo tiene).
type WithClient struct {
	Battery
	Client *client.Client `json:"client,omitempty"`
}

// AssociateInput encapsula la asociación batería→cliente.
type AssociateInput struct {
	ChipID    string
	WorkOrder string
	SaleDate  time.Time
	ClientID  int
}

// SearchFilter filtra el listado de baterías vendidas.
type SearchFilter struct {
	ChipID     string
	ClientName string
	SaleDate   *time.Time
}

// View es la proyección de batería usada por los listados; ReportState es
// el estado del reporte asociado o "No iniciado".
type View struct {
	ID          int            `json:"id"`
	ChipID      string         `json:"chip_id"`
	WorkOrder   *string        `json:"work_order,omitempty"`
	Type        string         `json:"type"`
	ReportState string         `json:"report_state,omitempty"`
	SaleDate    *time.Time     `json:"sale_date,omitempty"`
	Client      *client.Client `json:"client,omitempty"`
}

// SearchResponse agrega el listado con su total.
type SearchResponse struct {
	TotalBatteries int    `json:"total_batteries"`
	Batteries      []View `json:"batteries"`
}

// MeasurementView es una medición con su serie de puntos resuelta.
type MeasurementView struct {
	ID              int                `json:"id"`
	Magnitude       string             `json:"magnitude"`
	MeasurementDate time.Time          `json:"measurement_date"`
	Points          map[string]float64 `json:"points"`
}

// DetailResponse es la vista de una batería con sus mediciones.
type DetailResponse struct {
	Battery      View              `json:"battery"`
	Measurements []MeasurementView `json:"measurements"`
}

// RawDataInput es una carga de datos crudos ya parseada: una medición con
// su serie etiqueta→lectura.
type RawDataInput struct {
	ChipID          string
	Type            string
	Magnitude       string
	MeasurementDate time.Time
	Points          map[string]float64
}
