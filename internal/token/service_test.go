package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// memStore reproduce la semántica de reclamo: la fila valida a lo sumo una
// vez y solo mientras está viva.
type memStore struct {
	rows   map[int]*SecureToken
	nextID int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int]*SecureToken), nextID: 1}
}

func (m *memStore) Create(ctx context.Context, t SecureToken) (int, error) {
	t.ID = m.nextID
	m.nextID++
	m.rows[t.ID] = &t
	return t.ID, nil
}

func (m *memStore) ClaimIfValid(ctx context.Context, id int, verify func(hash string) bool) (*SecureToken, error) {
	row, ok := m.rows[id]
	if !ok || row.Used || !row.ExpiredDate.After(time.Now()) {
		return nil, ErrInvalid
	}
	if !verify(row.TokenHash) {
		return nil, ErrInvalid
	}
	row.Used = true
	claimed := *row
	return &claimed, nil
}

func TestGenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, 32)

	raw, err := svc.Generate(ctx, 9, time.Hour)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	if raw == "" {
		t.Fatal("token vacío")
	}

	idPart, secretPart, found := strings.Cut(raw, "-")
	if !found || idPart == "" || secretPart == "" {
		t.Fatalf("forma externa inesperada: %q", raw)
	}
	if stored := store.rows[1]; strings.Contains(stored.TokenHash, secretPart) {
		t.Fatal("el secreto quedó persistido en claro")
	}

	claimed, err := svc.Validate(ctx, raw)
	if err != nil {
		t.Fatalf("validar: %v", err)
	}
	if claimed.UserID != 9 {
		t.Fatalf("user_id %d", claimed.UserID)
	}
}

func TestValidateRejectsReuse(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), 32)

	raw, err := svc.Generate(ctx, 9, time.Hour)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	if _, err := svc.Validate(ctx, raw); err != nil {
		t.Fatalf("primera validación: %v", err)
	}
	if _, err := svc.Validate(ctx, raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("segunda validación: esperaba ErrInvalid, hubo %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), 32)

	raw, err := svc.Generate(ctx, 9, -time.Minute)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}

	if _, err := svc.Validate(ctx, raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("esperaba ErrInvalid, hubo %v", err)
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, 32)

	raw, err := svc.Generate(ctx, 9, time.Hour)
	if err != nil {
		t.Fatalf("generar: %v", err)
	}
	idPart, _, _ := strings.Cut(raw, "-")

	cases := []struct {
		name string
		raw  string
	}{
		{"vacío", ""},
		{"sin separador", "abcdef"},
		{"id no numérico", "x-secreto"},
		{"id inexistente", "999-secreto"},
		{"secreto alterado", idPart + "-secretofalso"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Validate(ctx, tc.raw); !errors.Is(err, ErrInvalid) {
				t.Fatalf("esperaba ErrInvalid, hubo %v", err)
			}
		})
	}

	// el token legítimo sigue vivo después de los intentos fallidos
	if _, err := svc.Validate(ctx, raw); err != nil {
		t.Fatalf("el token legítimo dejó de validar: %v", err)
	}
}
