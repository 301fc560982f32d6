package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/token"
)

type contextKey string

const (
	// ContextKeyUserID es el id del usuario autenticado.
	ContextKeyUserID contextKey = "user_id"
	// ContextKeyRole es el rol del usuario autenticado.
	ContextKeyRole contextKey = "role"
)

// Auth valida el JWT de acceso e inyecta los claims en el contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, http.StatusUnauthorized, "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type opaqueValidator interface {
	Validate(ctx context.Context, raw string) (*token.SecureToken, error)
}

// OpaqueAuth autentica con el token opaco de recuperación/bienvenida. El
// token es de un solo uso: pasa por acá y queda quemado.
func OpaqueAuth(tokens opaqueValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			raw = strings.TrimPrefix(raw, "Bearer ")
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "token ausente")
				return
			}

			claimed, err := tokens.Validate(r.Context(), raw)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claimed.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID recupera el id de usuario del contexto; 0 si no hay sesión.
func GetUserID(ctx context.Context) int {
	switch val := ctx.Value(ContextKeyUserID).(type) {
	case int:
		return val
	case string:
		id, _ := strconv.Atoi(val)
		return id
	default:
		return 0
	}
}

// GetRole recupera el rol del contexto.
func GetRole(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyRole).(string)
	return val
}

// RequireRoles exige que el usuario tenga alguno de los roles indicados.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := GetRole(r.Context())
			for _, role := range roles {
				if strings.EqualFold(current, role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, http.StatusForbidden, "acceso restringido")
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":     status,
		"success":  false,
		"response": nil,
		"message":  message,
	})
}
