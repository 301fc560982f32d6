package battery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
)

// ErrNotFound indica que la batería no existe.
var ErrNotFound = errors.New("batería no encontrada")

// Repository provee acceso a la tabla batteries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const batteryColumns = `id, chip_id, work_order, type, sale_date, registered_date, client_id`

// Create inserta una batería nueva y devuelve su id.
func (r *Repository) Create(ctx context.Context, b Battery) (int, error) {
	const query = `
        INSERT INTO batteries (chip_id, work_order, type, sale_date, registered_date, client_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(b.ChipID), b.WorkOrder, b.Type, b.SaleDate, b.RegisteredDate, b.ClientID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByChipID busca una batería por su chip.
func (r *Repository) FindByChipID(ctx context.Context, chipID string) (*Battery, error) {
	const query = `SELECT ` + batteryColumns + ` FROM batteries WHERE chip_id = $1`
	return scanBattery(r.pool.QueryRow(ctx, query, chipID))
}

// GetByID busca una batería por id.
func (r *Repository) GetByID(ctx context.Context, id int) (*Battery, error) {
	const query = `SELECT ` + batteryColumns + ` FROM batteries WHERE id = $1`
	return scanBattery(r.pool.QueryRow(ctx, query, id))
}

// UpdateAssociation fija la asociación batería→cliente (orden de trabajo,
// fecha de venta y cliente) sobre la fila ya cargada.
func (r *Repository) UpdateAssociation(ctx context.Context, id int, workOrder string, saleDate time.Time, clientID int) error {
	const query = `
        UPDATE batteries
        SET work_order = $2, sale_date = $3, client_id = $4
        WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, workOrder, saleDate, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithClient devuelve todas las baterías con su cliente (si tienen).
func (r *Repository) ListWithClient(ctx context.Context, onlySold bool) ([]WithClient, error) {
	query := `
        SELECT b.id, b.chip_id, b.work_order, b.type, b.sale_date, b.registered_date, b.client_id,
               c.id, c.national_id, c.name, c.last_name, c.email, c.phone_number, c.registered_date
        FROM batteries b
        LEFT JOIN clients c ON c.id = b.client_id`
	if onlySold {
		query += ` WHERE b.client_id IS NOT NULL`
	}
	query += ` ORDER BY b.registered_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batteries []WithClient
	for rows.Next() {
		var (
			b          WithClient
			cID        *int
			nationalID *string
			name       *string
			lastName   *string
			email      *string
			phone      *string
			registered *time.Time
		)
		err := rows.Scan(&b.ID, &b.ChipID, &b.WorkOrder, &b.Type, &b.SaleDate, &b.RegisteredDate, &b.ClientID,
			&cID, &nationalID, &name, &lastName, &email, &phone, &registered)
		if err != nil {
			return nil, err
		}
		if cID != nil {
			b.Client = &client.Client{
				ID:             *cID,
				NationalID:     deref(nationalID),
				Name:           deref(name),
				LastName:       deref(lastName),
				Email:          deref(email),
				PhoneNumber:    deref(phone),
				RegisteredDate: derefTime(registered),
			}
		}
		batteries = append(batteries, b)
	}

	return batteries, rows.Err()
}

// ReportStatusID devuelve el status_id del reporte de la batería, o nil si
// no tiene reporte.
func (r *Repository) ReportStatusID(ctx context.Context, batteryID int) (*int, error) {
	const query = `SELECT status_id FROM reports WHERE battery_id = $1`

	var statusID int
	if err := r.pool.QueryRow(ctx, query, batteryID).Scan(&statusID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &statusID, nil
}

func scanBattery(row pgx.Row) (*Battery, error) {
	var b Battery
	if err := row.Scan(&b.ID, &b.ChipID, &b.WorkOrder, &b.Type, &b.SaleDate, &b.RegisteredDate, &b.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
