package measurement

import "time"

// Measurement es un evento de medición sobre una batería. La serie de
// puntos asociada vive en el almacén de documentos, indexada por el id de
// la medición (ver PointsStore).
type Measurement struct {
	ID              int       `json:"id"`
	Magnitude       string    `json:"magnitude"`
	MeasurementDate time.Time `json:"measurement_date"`
	BatteryID       int       `json:"battery_id"`
}

// PointsRecord es el documento de la serie de puntos de una medición:
// etiqueta de tiempo → lectura numérica. Las etiquetas se almacenan como
// string, no como tipos de tiempo nativos.
type PointsRecord struct {
	ID     int                `json:"id"`
	Points map[string]float64 `json:"points"`
}
