package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/mail"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/util"
)

type userRepository interface {
	Create(ctx context.Context, u User) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindByNationalIDOrEmail(ctx context.Context, nationalID, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id, roleID int) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int) (*Role, error)
}

type tokenIssuer interface {
	Generate(ctx context.Context, userID int, lifetime time.Duration) (string, error)
}

// Service reúne las reglas de negocio de usuarios y sesiones.
type Service struct {
	repo        userRepository
	tokens      tokenIssuer
	mailer      mail.Mailer
	jwt         *auth.JWTManager
	recoveryTTL time.Duration
	frontendURL string
}

// NewService crea una nueva instancia del servicio.
func NewService(repo userRepository, tokens tokenIssuer, mailer mail.Mailer, jwtMgr *auth.JWTManager, recoveryTTL time.Duration, frontendURL string) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		mailer:      mailer,
		jwt:         jwtMgr,
		recoveryTTL: recoveryTTL,
		frontendURL: frontendURL,
	}
}

// Register da de alta un colaborador. La contraseña inicial es la cédula;
// el correo de bienvenida lleva un token opaco para fijar la definitiva.
// Una falla de correo no hace fallar el alta.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*View, error) {
	input.NationalID = strings.TrimSpace(input.NationalID)
	input.Email = strings.TrimSpace(input.Email)

	if err := util.RequireString(input.NationalID, "cédula"); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, apperr.Invalid(err.Error())
	}

	role, err := s.repo.GetRole(ctx, input.RoleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, apperr.NotFound("El rol no existe.")
		}
		return nil, apperr.Internal(err)
	}

	existing, err := s.repo.FindByNationalIDOrEmail(ctx, input.NationalID, input.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Usuario ya existe.")
	}

	initialHash, err := auth.Hash(input.NationalID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	created, err := s.repo.Create(ctx, User{
		Name:         input.Name,
		Lastname:     input.Lastname,
		Email:        input.Email,
		NationalID:   input.NationalID,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: initialHash,
		RoleID:       input.RoleID,
	})
	if err != nil {
		// Carrera perdida contra otro alta concurrente: el UNIQUE decide.
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("Usuario ya existe.")
		}
		return nil, apperr.Internal(err)
	}

	welcomeToken, err := s.tokens.Generate(ctx, created.ID, s.recoveryTTL)
	if err != nil {
		log.Warn().Err(err).Int("user_id", created.ID).Msg("no se pudo generar el token de bienvenida")
	} else if err := s.mailer.SendWelcome(ctx, mail.WelcomeMessage{
		Email:    created.Email,
		UserName: fmt.Sprintf("%s %s", created.Name, created.Lastname),
		Role:     role.Name,
		URL:      s.frontendURL,
		Token:    welcomeToken,
	}); err != nil {
		log.Warn().Err(err).Int("user_id", created.ID).Msg("no se pudo enviar el correo de bienvenida")
	}

	view := created.view()
	return &view, nil
}

// Login autentica por email y contraseña y emite el JWT de sesión. Acepta
// hashes Argon2id y, como fallback, el digest SHA-256 heredado.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	found, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Usuario no encontrado.")
		}
		return nil, apperr.Internal(err)
	}

	if !s.verifyPassword(password, found.PasswordHash) {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}

	accessToken, err := s.jwt.GenerateAccessToken(found.ID, found.Name, found.Email, found.RoleName)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResponse{View: found.view(), Token: accessToken}, nil
}

func (s *Service) verifyPassword(password, storedHash string) bool {
	if strings.HasPrefix(storedHash, "$argon2id$") {
		ok, err := auth.Verify(password, storedHash)
		return err == nil && ok
	}
	// filas anteriores a la migración a Argon2id
	return auth.SHA256Hex(password) == storedHash
}

// Search devuelve todos los usuarios.
func (s *Service) Search(ctx context.Context) ([]View, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]View, 0, len(users))
	for _, u := range users {
		views = append(views, u.view())
	}
	return views, nil
}

// Get recupera un usuario por id.
func (s *Service) Get(ctx context.Context, id int) (*View, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Usuario no encontrado.")
		}
		return nil, apperr.Internal(err)
	}
	view := found.view()
	return &view, nil
}

// UpdateRole cambia el rol del usuario.
func (s *Service) UpdateRole(ctx context.Context, id, roleID int) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return apperr.NotFound("El rol no existe.")
		}
		return apperr.Internal(err)
	}

	if err := s.repo.UpdateRole(ctx, id, roleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("El usuario no existe.")
		}
		return apperr.Internal(err)
	}
	return nil
}

// AccountRecovery emite un token de recuperación y envía el correo con las
// instrucciones. Devuelve el token y la URL armada para el frontend.
func (s *Service) AccountRecovery(ctx context.Context, email, baseURL string) (*RecoveryResponse, error) {
	found, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("El usuario no se encuentra registrado.")
		}
		return nil, apperr.Internal(err)
	}

	recoveryToken, err := s.tokens.Generate(ctx, found.ID, s.recoveryTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	recoveryURL := fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(recoveryToken))
	if err := s.mailer.SendRecovery(ctx, mail.RecoveryMessage{Email: found.Email, URL: recoveryURL}); err != nil {
		log.Warn().Err(err).Int("user_id", found.ID).Msg("no se pudo enviar el correo de recuperación")
	}

	return &RecoveryResponse{Token: recoveryToken, URL: recoveryURL}, nil
}

// PasswordRecovery fija una contraseña nueva para el usuario autenticado
// con el token opaco de recuperación.
func (s *Service) PasswordRecovery(ctx context.Context, userID int, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return apperr.Invalid(err.Error())
	}

	found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("El usuario no existe.")
		}
		return apperr.Internal(err)
	}

	if s.verifyPassword(newPassword, found.PasswordHash) {
		return apperr.Conflict("No puede utilizar la misma contraseña.")
	}

	newHash, err := auth.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// PasswordUpdate cambia la contraseña verificando la actual.
func (s *Service) PasswordUpdate(ctx context.Context, id int, currentPassword, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return apperr.Invalid(err.Error())
	}

	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("El usuario no existe.")
		}
		return apperr.Internal(err)
	}

	if !s.verifyPassword(currentPassword, found.PasswordHash) {
		return &apperr.Error{Code: 401, Message: "La contraseña no coincide."}
	}
	if newPassword == currentPassword {
		return apperr.Conflict("La nueva contraseña es igual a la contraseña actual.")
	}

	newHash, err := auth.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.repo.UpdatePassword(ctx, id, newHash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Delete elimina el usuario.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("No se encontró el usuario.")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Roles devuelve el catálogo de roles.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return roles, nil
}
