package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provee acceso a la tabla statuses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStatuses devuelve el catálogo completo.
func (r *Repository) ListStatuses(ctx context.Context) ([]Status, error) {
	const query = `SELECT id, name FROM statuses ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	return statuses, rows.Err()
}
