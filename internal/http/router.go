package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/battery"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/config"
	httpmiddleware "github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/http/middleware"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/report"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/token"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/user"
)

// Handler agrupa los servicios detrás de la API.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	jwt           *auth.JWTManager
	users         *user.Service
	clients       *client.Service
	batteries     *battery.Service
	reports       *report.Service
	tokens        *token.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// Deps reúne las dependencias que arma cmd/api.
type Deps struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	JWT       *auth.JWTManager
	Users     *user.Service
	Clients   *client.Service
	Batteries *battery.Service
	Reports   *report.Service
	Tokens    *token.Service
}

// NewRouter devuelve el router configurado con toda la API.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	h := &Handler{
		cfg:           cfg,
		pool:          deps.Pool,
		redis:         deps.Redis,
		jwt:           deps.JWT,
		users:         deps.Users,
		clients:       deps.Clients,
		batteries:     deps.Batteries,
		reports:       deps.Reports,
		tokens:        deps.Tokens,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/api/access", func(access chi.Router) {
			access.Post("/login", h.Login)
			access.Post("/recovery", h.AccountRecovery)
		})
	})

	// El token opaco de recuperación es de un solo uso: cada endpoint lo
	// consume.
	r.Group(func(recovery chi.Router) {
		recovery.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
		recovery.Use(httpmiddleware.OpaqueAuth(h.tokens))

		recovery.Get("/api/access/recovery/state", h.AccountRecoveryState)
		recovery.Put("/api/access/recovery/password", h.PasswordRecovery)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.jwt))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/api/me", h.Me)
		private.Put("/api/access/password", h.PasswordUpdate)

		private.Route("/api/access", func(access chi.Router) {
			access.Post("/registry", h.UserRegister)
			access.Get("/users", h.UsersSearch)
			access.Get("/users/{id}", h.UserSearch)
			access.Put("/users/{id}/role", h.RoleUpdate)
			access.Delete("/users/{id}", h.UserDelete)
			access.Get("/roles", h.RolesList)
		})

		private.Route("/api/client", func(clients chi.Router) {
			clients.Post("/", h.ClientRegister)
			clients.Get("/", h.ClientsSearch)
			clients.Get("/{id}", h.ClientSearch)
			clients.Put("/{id}", h.ClientUpdate)
			clients.Delete("/{id}", h.ClientDelete)
		})

		private.Route("/api/battery", func(batteries chi.Router) {
			batteries.Get("/", h.BatteriesSearch)
			batteries.Post("/search", h.BatteriesSearchWithFilter)
			batteries.Get("/{id}", h.BatteryDetail)

			batteries.Group(func(branch chi.Router) {
				branch.Use(httpmiddleware.RequireRoles(user.RoleAdministrator, user.RoleBranch))
				branch.Post("/associate", h.BatteryAssociate)
			})

			batteries.Group(func(lab chi.Router) {
				lab.Use(httpmiddleware.RequireRoles(user.RoleAdministrator, user.RoleLab))
				lab.Post("/rawdata", h.BatteryRawDataUpload)
			})
		})

		private.Route("/api/report", func(reports chi.Router) {
			reports.Post("/search", h.ReportsSearch)
			reports.Get("/history", h.ReportsHistory)
			reports.Get("/{id}", h.ReportDetail)

			reports.Group(func(branch chi.Router) {
				branch.Use(httpmiddleware.RequireRoles(user.RoleBranch))
				branch.Post("/", h.ReportCreate)
			})

			reports.Group(func(lab chi.Router) {
				lab.Use(httpmiddleware.RequireRoles(user.RoleLab))
				lab.Put("/{id}/measurements", h.ReportFinalize)
			})

			reports.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireRoles(user.RoleAdministrator))
				admin.Get("/analysis", h.ReportsAnalysis)
				admin.Get("/metrics", h.ReportsMetrics)
			})
		})
	})

	return r
}

// Health responde mientras el proceso está vivo.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

// Ready verifica las dependencias externas.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		WriteErr(w, &apperr.Error{Code: http.StatusServiceUnavailable, Message: "Dependencias no disponibles."})
		return
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		WriteErr(w, &apperr.Error{Code: http.StatusServiceUnavailable, Message: "Dependencias no disponibles."})
		return
	}

	WriteOK(w, http.StatusOK, map[string]string{"status": "ready"}, "")
}
