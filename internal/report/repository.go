package report

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/db"
)

// BatteryRef es la batería resuelta para crear un reporte, con su cliente
// cargado si lo tiene.
type BatteryRef struct {
	ID       int
	ChipID   string
	Type     string
	ClientID *int
	Client   *client.Client
}

// ListRow es una fila del listado de reportes con sus relaciones.
type ListRow struct {
	ID          int
	ChipID      string
	ClientName  string
	StatusName  string
	BatteryType string
	ReportDate  time.Time
}

// ReportRow es el reporte con el chip de su batería.
type ReportRow struct {
	Report
	ChipID string
}

// StatusRow es un veredicto por medición con el nombre de su estado
// resuelto (nil si el estado no existe).
type StatusRow struct {
	MeasurementID int
	StatusName    *string
	Comment       string
}

// MeasurementRow es una medición de la batería del reporte.
type MeasurementRow struct {
	ID              int
	Magnitude       string
	MeasurementDate time.Time
}

// DetailData es el grafo crudo del detalle; el join veredicto→medición lo
// resuelve el servicio.
type DetailData struct {
	ID         int
	StatusName *string
	ReportDate time.Time

	ChipID           *string
	BatteryType      *string
	BatteryWorkOrder *string
	SaleDate         *time.Time
	RegisteredDate   *time.Time

	ClientID    *int
	ClientName  *string
	ClientEmail *string

	Statuses     []StatusRow
	Measurements []MeasurementRow
}

// RollupRow resume una batería para las consultas analíticas: cliente y
// estado del reporte, ambos opcionales.
type RollupRow struct {
	BatteryID int
	ClientID  *int
	StatusID  *int
}

// Repository provee acceso a reports y measurement_statuses, junto con las
// lecturas de batteries que el flujo de reportes necesita.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetBatteryByChip resuelve la batería por chip con su cliente.
func (r *Repository) GetBatteryByChip(ctx context.Context, chipID string) (*BatteryRef, error) {
	const query = `
        SELECT b.id, b.chip_id, b.type, b.client_id,
               c.id, c.national_id, c.name, c.last_name, c.email, c.phone_number, c.registered_date
        FROM batteries b
        LEFT JOIN clients c ON c.id = b.client_id
        WHERE b.chip_id = $1`

	var (
		ref        BatteryRef
		cID        *int
		nationalID *string
		name       *string
		lastName   *string
		email      *string
		phone      *string
		registered *time.Time
	)
	err := r.pool.QueryRow(ctx, query, chipID).Scan(&ref.ID, &ref.ChipID, &ref.Type, &ref.ClientID,
		&cID, &nationalID, &name, &lastName, &email, &phone, &registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if cID != nil {
		ref.Client = &client.Client{ID: *cID}
		if nationalID != nil {
			ref.Client.NationalID = *nationalID
		}
		if name != nil {
			ref.Client.Name = *name
		}
		if lastName != nil {
			ref.Client.LastName = *lastName
		}
		if email != nil {
			ref.Client.Email = *email
		}
		if phone != nil {
			ref.Client.PhoneNumber = *phone
		}
		if registered != nil {
			ref.Client.RegisteredDate = *registered
		}
	}

	return &ref, nil
}

// HasReport es el chequeo rápido de existencia de reporte para la batería.
// El respaldo real contra la doble creación es el índice único de
// reports.battery_id, no este chequeo.
func (r *Repository) HasReport(ctx context.Context, batteryID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reports WHERE battery_id = $1)`, batteryID).Scan(&exists)
	return exists, err
}

// Create inserta el reporte; si la batería ya tiene uno, el índice único
// hace que el insert no produzca fila y se devuelve ErrDuplicate.
func (r *Repository) Create(ctx context.Context, rep Report) (int, error) {
	const query = `
        INSERT INTO reports (status_id, report_date, file_name, battery_id)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (battery_id) DO NOTHING
        RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, query, rep.StatusID, rep.ReportDate, rep.FileName, rep.BatteryID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// List devuelve todos los reportes con batería, cliente y estado.
func (r *Repository) List(ctx context.Context) ([]ListRow, error) {
	const query = `
        SELECT rp.id, b.chip_id, COALESCE(c.name, ''), COALESCE(s.name, ''), b.type, rp.report_date
        FROM reports rp
        JOIN batteries b ON b.id = rp.battery_id
        LEFT JOIN clients c ON c.id = b.client_id
        LEFT JOIN statuses s ON s.id = rp.status_id
        ORDER BY rp.report_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ListRow
	for rows.Next() {
		var row ListRow
		if err := rows.Scan(&row.ID, &row.ChipID, &row.ClientName, &row.StatusName, &row.BatteryType, &row.ReportDate); err != nil {
			return nil, err
		}
		list = append(list, row)
	}

	return list, rows.Err()
}

// Get devuelve el reporte con el chip de su batería.
func (r *Repository) Get(ctx context.Context, id int) (*ReportRow, error) {
	const query = `
        SELECT rp.id, rp.status_id, rp.report_date, rp.file_name, rp.battery_id, b.chip_id
        FROM reports rp
        JOIN batteries b ON b.id = rp.battery_id
        WHERE rp.id = $1`

	var row ReportRow
	err := r.pool.QueryRow(ctx, query, id).Scan(&row.ID, &row.StatusID, &row.ReportDate, &row.FileName, &row.BatteryID, &row.ChipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// CountStatuses cuenta los veredictos ya cargados del reporte.
func (r *Repository) CountStatuses(ctx context.Context, reportID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM measurement_statuses WHERE report_id = $1`, reportID).Scan(&count)
	return count, err
}

// Finalize aplica la transición terminal y los veredictos en una sola
// transacción. El UPDATE condicional sobre el estado Pendiente es la
// fuente de verdad de la finalización única: si no afecta filas, otro
// llamador ya finalizó el reporte.
func (r *Repository) Finalize(ctx context.Context, reportID, pendingStatusID, newStatusID int, statuses []MeasurementStatus) error {
	return db.WithTx(ctx, r.pool, func(pctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(pctx,
			`UPDATE reports SET status_id = $2 WHERE id = $1 AND status_id = $3`,
			reportID, newStatusID, pendingStatusID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyFinalized
		}

		for _, ms := range statuses {
			_, err := tx.Exec(pctx,
				`INSERT INTO measurement_statuses (measurement_id, status_id, comment, report_id)
                 VALUES ($1, $2, $3, $4)`,
				ms.MeasurementID, ms.StatusID, ms.Comment, reportID)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetDetail carga el grafo completo del reporte. Las relaciones opcionales
// llegan como punteros nil en lugar de fallar.
func (r *Repository) GetDetail(ctx context.Context, reportID int) (*DetailData, error) {
	const query = `
        SELECT rp.id, s.name, rp.report_date,
               b.chip_id, b.type, b.work_order, b.sale_date, b.registered_date,
               c.id, c.name, c.email
        FROM reports rp
        LEFT JOIN statuses s ON s.id = rp.status_id
        LEFT JOIN batteries b ON b.id = rp.battery_id
        LEFT JOIN clients c ON c.id = b.client_id
        WHERE rp.id = $1`

	var d DetailData
	err := r.pool.QueryRow(ctx, query, reportID).Scan(&d.ID, &d.StatusName, &d.ReportDate,
		&d.ChipID, &d.BatteryType, &d.BatteryWorkOrder, &d.SaleDate, &d.RegisteredDate,
		&d.ClientID, &d.ClientName, &d.ClientEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	const statusQuery = `
        SELECT ms.measurement_id, s.name, ms.comment
        FROM measurement_statuses ms
        LEFT JOIN statuses s ON s.id = ms.status_id
        WHERE ms.report_id = $1
        ORDER BY ms.id`

	rows, err := r.pool.Query(ctx, statusQuery, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sr StatusRow
		if err := rows.Scan(&sr.MeasurementID, &sr.StatusName, &sr.Comment); err != nil {
			return nil, err
		}
		d.Statuses = append(d.Statuses, sr)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	const measurementQuery = `
        SELECT m.id, m.magnitude, m.measurement_date
        FROM measurements m
        JOIN reports rp ON rp.battery_id = m.battery_id
        WHERE rp.id = $1
        ORDER BY m.measurement_date`

	mrows, err := r.pool.Query(ctx, measurementQuery, reportID)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()

	for mrows.Next() {
		var mr MeasurementRow
		if err := mrows.Scan(&mr.ID, &mr.Magnitude, &mr.MeasurementDate); err != nil {
			return nil, err
		}
		d.Measurements = append(d.Measurements, mr)
	}

	return &d, mrows.Err()
}

// BatteryRollup resume todas las baterías con su cliente y el estado de su
// reporte, para las consultas analíticas.
func (r *Repository) BatteryRollup(ctx context.Context) ([]RollupRow, error) {
	const query = `
        SELECT b.id, b.client_id, rp.status_id
        FROM batteries b
        LEFT JOIN reports rp ON rp.battery_id = b.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rollup []RollupRow
	for rows.Next() {
		var row RollupRow
		if err := rows.Scan(&row.BatteryID, &row.ClientID, &row.StatusID); err != nil {
			return nil, err
		}
		rollup = append(rollup, row)
	}

	return rollup, rows.Err()
}
