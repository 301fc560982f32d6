package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indica que el usuario no existe.
	ErrNotFound = errors.New("usuario no encontrado")
	// ErrRoleNotFound indica que el rol no existe.
	ErrRoleNotFound = errors.New("rol no encontrado")
	// ErrDuplicate indica cédula o email ya registrados.
	ErrDuplicate = errors.New("usuario duplicado")
)

// Repository provee acceso a las tablas users y roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.name, u.lastname, u.email, u.national_id, u.phone_number,
               u.password_hash, u.registered_date, u.role_id, r.name`

const userSelect = `
        SELECT ` + userColumns + `
        FROM users u
        JOIN roles r ON r.id = u.role_id`

// Create inserta un usuario nuevo y devuelve la fila con su rol.
func (r *Repository) Create(ctx context.Context, u User) (*User, error) {
	const query = `
        INSERT INTO users (name, lastname, email, national_id, phone_number, password_hash, registered_date, role_id)
        VALUES ($1, $2, $3, $4, $5, $6, now(), $7)
        RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(u.Name),
		strings.TrimSpace(u.Lastname),
		strings.ToLower(strings.TrimSpace(u.Email)),
		strings.TrimSpace(u.NationalID),
		strings.TrimSpace(u.PhoneNumber),
		u.PasswordHash,
		u.RoleID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// GetByID busca un usuario con su rol.
func (r *Repository) GetByID(ctx context.Context, id int) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

// GetByEmail busca un usuario por email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.email = $1`, strings.ToLower(email)))
}

// FindByNationalIDOrEmail resuelve el chequeo de duplicados del alta.
func (r *Repository) FindByNationalIDOrEmail(ctx context.Context, nationalID, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.national_id = $1 OR u.email = $2`,
		nationalID, strings.ToLower(email)))
}

// List devuelve todos los usuarios con su rol.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.registered_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// UpdateRole cambia el rol del usuario.
func (r *Repository) UpdateRole(ctx context.Context, id, roleID int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_id = $2 WHERE id = $1`, id, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword reemplaza el hash de contraseña.
func (r *Repository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete elimina el usuario.
func (r *Repository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRoles devuelve el catálogo de roles.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

// GetRole busca un rol por id.
func (r *Repository) GetRole(ctx context.Context, id int) (*Role, error) {
	var role Role
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Lastname, &u.Email, &u.NationalID, &u.PhoneNumber,
		&u.PasswordHash, &u.RegisteredDate, &u.RoleID, &u.RoleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
