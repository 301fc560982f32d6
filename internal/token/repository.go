package token

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/db"
)

// Repository es el almacén de credenciales: persiste los tokens opacos y
// resuelve el reclamo de un solo uso.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crea la instancia del repositorio.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserta la fila del token y devuelve su id.
func (r *Repository) Create(ctx context.Context, t SecureToken) (int, error) {
	const query = `
        INSERT INTO secure_tokens (user_id, token_hash, expired_date, used, created_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, query, t.UserID, t.TokenHash, t.ExpiredDate, t.Used, t.CreatedDate).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ClaimIfValid resuelve la validación de un solo uso en una única
// transacción: toma la fila viva (no usada, no expirada) con lock,
// verifica el secreto vía el callback y recién entonces marca used=true.
// La ventana lectura→escritura queda cerrada por el lock de fila.
func (r *Repository) ClaimIfValid(ctx context.Context, id int, verify func(hash string) bool) (*SecureToken, error) {
	var claimed *SecureToken

	err := db.WithTx(ctx, r.pool, func(pctx context.Context, tx pgx.Tx) error {
		const query = `
            SELECT id, user_id, token_hash, expired_date, used, created_date
            FROM secure_tokens
            WHERE id = $1 AND NOT used AND expired_date > now()
            FOR UPDATE`

		var t SecureToken
		err := tx.QueryRow(pctx, query, id).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiredDate, &t.Used, &t.CreatedDate)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalid
			}
			return err
		}

		if !verify(t.TokenHash) {
			return ErrInvalid
		}

		if _, err := tx.Exec(pctx, `UPDATE secure_tokens SET used = true WHERE id = $1`, id); err != nil {
			return err
		}

		t.Used = true
		claimed = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
