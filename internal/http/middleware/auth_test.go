package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/token"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/user"
)

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(strings.Repeat("k", 32), time.Hour)
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthInjectsClaims(t *testing.T) {
	jwtMgr := testJWT()
	accessToken, err := jwtMgr.GenerateAccessToken(7, "Ana", "ana@gda.test", user.RoleLab)
	if err != nil {
		t.Fatalf("generar token: %v", err)
	}

	var gotUserID int
	var gotRole string
	handler := Auth(jwtMgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != 7 {
		t.Fatalf("user_id %d", gotUserID)
	}
	if gotRole != user.RoleLab {
		t.Fatalf("rol %q", gotRole)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	jwtMgr := testJWT()
	otherKey := auth.NewJWTManager(strings.Repeat("x", 32), time.Hour)
	foreign, err := otherKey.GenerateAccessToken(7, "Ana", "ana@gda.test", user.RoleLab)
	if err != nil {
		t.Fatalf("generar token: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"sin header", ""},
		{"sin esquema bearer", "Token abc"},
		{"token corrupto", "Bearer no.es.jwt"},
		{"firmado con otra clave", "Bearer " + foreign},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hit := false
			handler := Auth(jwtMgr)(okHandler(&hit))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if hit {
				t.Fatal("el handler corrió sin credenciales válidas")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status %d", rec.Code)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"rol permitido", user.RoleLab, []string{user.RoleLab}, http.StatusOK},
		{"insensible a mayúsculas", "laboratorio", []string{user.RoleLab}, http.StatusOK},
		{"rol ajeno", user.RoleBranch, []string{user.RoleLab}, http.StatusForbidden},
		{"sin rol", "", []string{user.RoleLab}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hit := false
			handler := RequireRoles(tc.allowed...)(okHandler(&hit))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := context.WithValue(req.Context(), ContextKeyRole, tc.role)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			if rec.Code != tc.want {
				t.Fatalf("status %d, esperaba %d", rec.Code, tc.want)
			}
			if hit != (tc.want == http.StatusOK) {
				t.Fatalf("handler corrió: %v", hit)
			}
		})
	}
}

type stubOpaque struct {
	valid map[string]int
}

func (s *stubOpaque) Validate(ctx context.Context, raw string) (*token.SecureToken, error) {
	if userID, ok := s.valid[raw]; ok {
		delete(s.valid, raw) // un solo uso
		return &token.SecureToken{UserID: userID}, nil
	}
	return nil, token.ErrInvalid
}

func TestOpaqueAuth(t *testing.T) {
	tokens := &stubOpaque{valid: map[string]int{"1-secreto": 9}}

	var gotUserID int
	handler := OpaqueAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer 1-secreto")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if gotUserID != 9 {
		t.Fatalf("user_id %d", gotUserID)
	}

	// el mismo token ya no entra
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reutilización aceptada: status %d", rec.Code)
	}
}
