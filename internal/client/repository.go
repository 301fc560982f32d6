package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indica que el cliente no existe.
	ErrNotFound = errors.New("cliente no encontrado")
	// ErrDuplicate indica cédula o email ya registrados.
	ErrDuplicate = errors.New("cliente duplicado")
)

// Repository provee acceso a la tabla clients.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, national_id, name, last_name, email, phone_number, registered_date`

// Create inserta un cliente nuevo.
func (r *Repository) Create(ctx context.Context, input RegisterInput) (*Client, error) {
	const query = `
        INSERT INTO clients (national_id, name, last_name, email, phone_number, registered_date)
        VALUES ($1, $2, $3, $4, $5, now())
        RETURNING ` + clientColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.NationalID),
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.LastName),
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.PhoneNumber),
	)

	c, err := scanClient(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return c, nil
}

// GetByID busca un cliente por id.
func (r *Repository) GetByID(ctx context.Context, id int) (*Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

// FindByNationalIDOrEmail busca un cliente por cédula o email, usado por el
// chequeo de duplicados del alta.
func (r *Repository) FindByNationalIDOrEmail(ctx context.Context, nationalID, email string) (*Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE national_id = $1 OR email = $2`
	return scanClient(r.pool.QueryRow(ctx, query, nationalID, strings.ToLower(email)))
}

// List devuelve todos los clientes.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients ORDER BY registered_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}

	return clients, rows.Err()
}

// Update modifica datos de contacto del cliente.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Client, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Name))
		idx++
	}
	if input.LastName != nil {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", idx))
		args = append(args, strings.TrimSpace(*input.LastName))
		idx++
	}
	if input.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(*input.Email)))
		idx++
	}
	if input.PhoneNumber != nil {
		setParts = append(setParts, fmt.Sprintf("phone_number = $%d", idx))
		args = append(args, strings.TrimSpace(*input.PhoneNumber))
		idx++
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, input.ID)
	}

	args = append(args, input.ID)
	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d RETURNING `+clientColumns,
		strings.Join(setParts, ", "), idx)

	c, err := scanClient(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return c, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// Delete elimina el cliente.
func (r *Repository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.NationalID, &c.Name, &c.LastName, &c.Email, &c.PhoneNumber, &c.RegisteredDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
