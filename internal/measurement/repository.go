package measurement

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indica que la medición no existe.
var ErrNotFound = errors.New("medición no encontrada")

// Repository provee acceso a la tabla measurements.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserta una medición y devuelve su id.
func (r *Repository) Create(ctx context.Context, m Measurement) (int, error) {
	const query = `
        INSERT INTO measurements (magnitude, measurement_date, battery_id)
        VALUES ($1, $2, $3)
        RETURNING id`

	var id int
	if err := r.pool.QueryRow(ctx, query, m.Magnitude, m.MeasurementDate, m.BatteryID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// FindByBatteryMagnitudeDate busca una medición por la clave natural usada
// por la ingesta para detectar duplicados.
func (r *Repository) FindByBatteryMagnitudeDate(ctx context.Context, batteryID int, magnitude string, date time.Time) (*Measurement, error) {
	const query = `
        SELECT id, magnitude, measurement_date, battery_id
        FROM measurements
        WHERE battery_id = $1 AND magnitude = $2 AND measurement_date = $3`

	var m Measurement
	err := r.pool.QueryRow(ctx, query, batteryID, magnitude, date).
		Scan(&m.ID, &m.Magnitude, &m.MeasurementDate, &m.BatteryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByBattery devuelve las mediciones de una batería.
func (r *Repository) ListByBattery(ctx context.Context, batteryID int) ([]Measurement, error) {
	const query = `
        SELECT id, magnitude, measurement_date, battery_id
        FROM measurements
        WHERE battery_id = $1
        ORDER BY measurement_date`

	rows, err := r.pool.Query(ctx, query, batteryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var measurements []Measurement
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.Magnitude, &m.MeasurementDate, &m.BatteryID); err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
	}

	return measurements, rows.Err()
}
