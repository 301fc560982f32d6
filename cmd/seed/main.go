package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/catalog"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/db"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/user"
)

// Siembra los datos mínimos sin los cuales la API no arranca: el catálogo
// de estados de reporte, los roles y opcionalmente el primer administrador.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		adminEmail    = fs.String("admin-email", "", "email del administrador inicial (opcional)")
		adminName     = fs.String("admin-name", "Admin", "nombre del administrador inicial")
		adminPassword = fs.String("admin-password", "", "contraseña del administrador inicial")
		adminDNI      = fs.String("admin-dni", "", "documento del administrador inicial")
	)

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a la base")
	}
	defer pool.Close()

	if err := seedStatuses(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("fallo sembrando estados")
	}
	if err := seedRoles(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("fallo sembrando roles")
	}

	if *adminEmail != "" {
		if *adminPassword == "" || *adminDNI == "" {
			log.Fatal().Msg("admin-password y admin-dni son obligatorios con admin-email")
		}
		if err := seedAdmin(ctx, pool, *adminName, *adminEmail, *adminDNI, *adminPassword); err != nil {
			log.Fatal().Err(err).Msg("fallo sembrando administrador")
		}
	}

	log.Info().Msg("seed completado")
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func seedStatuses(ctx context.Context, pool execer) error {
	for _, name := range []string{catalog.StatusPending, catalog.StatusApproved, catalog.StatusRejected} {
		if _, err := pool.Exec(ctx, `INSERT INTO statuses (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("estado %q: %w", name, err)
		}
	}
	return nil
}

func seedRoles(ctx context.Context, pool execer) error {
	for _, name := range []string{user.RoleAdministrator, user.RoleBranch, user.RoleLab} {
		if _, err := pool.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("rol %q: %w", name, err)
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, pool execer, name, email, nationalID, password string) error {
	hash, err := auth.Hash(password)
	if err != nil {
		return err
	}

	const insert = `
        INSERT INTO users (name, lastname, email, national_id, phone_number, password_hash, registered_date, role_id)
        SELECT $1, '', $2, $3, '', $4, now(), r.id
        FROM roles r
        WHERE r.name = $5
        ON CONFLICT (email) DO NOTHING`

	tag, err := pool.Exec(ctx, insert, name, email, nationalID, hash, user.RoleAdministrator)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		log.Info().Str("email", email).Msg("el administrador ya existe, nada que sembrar")
	}
	return nil
}
