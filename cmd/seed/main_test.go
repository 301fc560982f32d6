package main

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecer struct {
	tags  []string
	calls []string
}

func (s *stubExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, sql)
	tag := "INSERT 0 1"
	if len(s.tags) > 0 {
		tag = s.tags[0]
		s.tags = s.tags[1:]
	}
	return pgconn.NewCommandTag(tag), nil
}

func TestSeedAdminIdempotente(t *testing.T) {
	ctx := context.Background()

	t.Run("inserta al administrador la primera vez", func(t *testing.T) {
		pool := &stubExecer{}
		if err := seedAdmin(ctx, pool, "Admin", "admin@gda.test", "20111222", "Secreta123"); err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if len(pool.calls) != 1 || !strings.Contains(pool.calls[0], "INSERT INTO users") {
			t.Fatalf("llamadas: %v", pool.calls)
		}
	})

	t.Run("un administrador existente no es error", func(t *testing.T) {
		pool := &stubExecer{tags: []string{"INSERT 0 0"}}
		if err := seedAdmin(ctx, pool, "Admin", "admin@gda.test", "20111222", "Secreta123"); err != nil {
			t.Fatalf("repetir el seed debe ser inocuo: %v", err)
		}
	})
}

func TestSeedCatalogos(t *testing.T) {
	ctx := context.Background()
	pool := &stubExecer{}

	if err := seedStatuses(ctx, pool); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if err := seedRoles(ctx, pool); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(pool.calls) != 6 {
		t.Fatalf("esperaba 6 inserts, hubo %d", len(pool.calls))
	}
	for _, sql := range pool.calls {
		if !strings.Contains(sql, "ON CONFLICT (name) DO NOTHING") {
			t.Fatalf("insert no idempotente: %q", sql)
		}
	}
}
