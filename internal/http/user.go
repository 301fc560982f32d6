package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	httpmiddleware "github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/http/middleware"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/user"
)

type userRegisterPayload struct {
	Name        string `json:"name"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	NationalID  string `json:"national_id"`
	PhoneNumber string `json:"phone_number"`
	RoleID      int    `json:"role_id"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleUpdatePayload struct {
	RoleID int `json:"role_id"`
}

type accountRecoveryPayload struct {
	Email string `json:"email"`
}

type passwordRecoveryPayload struct {
	NewPassword string `json:"new_password"`
}

type passwordUpdatePayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserRegister da de alta un colaborador y envía el correo de bienvenida.
func (h *Handler) UserRegister(w http.ResponseWriter, r *http.Request) {
	var payload userRegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	view, err := h.users.Register(r.Context(), user.RegisterInput{
		Name:        payload.Name,
		Lastname:    payload.Lastname,
		Email:       payload.Email,
		NationalID:  payload.NationalID,
		PhoneNumber: payload.PhoneNumber,
		RoleID:      payload.RoleID,
	})
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusCreated, view, "Usuario creado y correo de bienvenida enviado correctamente.")
}

// Login autentica por email y contraseña y devuelve el token de sesión.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	response, err := h.users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, response, "")
}

// Me devuelve el perfil del usuario autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httpmiddleware.GetUserID(r.Context())
	if userID <= 0 {
		WriteErr(w, &apperr.Error{Code: http.StatusUnauthorized, Message: "Sesión inválida."})
		return
	}

	view, err := h.users.Get(r.Context(), userID)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, view, "")
}

// UsersSearch lista todos los colaboradores.
func (h *Handler) UsersSearch(w http.ResponseWriter, r *http.Request) {
	views, err := h.users.Search(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, views, "")
}

// UserSearch devuelve un colaborador por id.
func (h *Handler) UserSearch(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de usuario inválido."))
		return
	}

	view, err := h.users.Get(r.Context(), userID)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, view, "")
}

// RoleUpdate cambia el rol de un colaborador.
func (h *Handler) RoleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de usuario inválido."))
		return
	}

	var payload roleUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	if err := h.users.UpdateRole(r.Context(), userID, payload.RoleID); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "Rol actualizado.")
}

// UserDelete elimina un colaborador.
func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de usuario inválido."))
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "Usuario borrado correctamente.")
}

// RolesList devuelve el catálogo de roles.
func (h *Handler) RolesList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.Roles(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, roles, "")
}

// AccountRecovery emite un token de recuperación de un solo uso y lo envía
// por correo.
func (h *Handler) AccountRecovery(w http.ResponseWriter, r *http.Request) {
	var payload accountRecoveryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	response, err := h.users.AccountRecovery(r.Context(), payload.Email, h.cfg.FrontendURL)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, response, "Cuenta recuperada. Se ha enviado un email con las instrucciones.")
}

// AccountRecoveryState confirma que el token de recuperación sigue vigente.
// Llegar acá implica haberlo consumido: es de un solo uso.
func (h *Handler) AccountRecoveryState(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, http.StatusOK, nil, "")
}

// PasswordRecovery fija la contraseña nueva de una cuenta recuperada.
func (h *Handler) PasswordRecovery(w http.ResponseWriter, r *http.Request) {
	userID := httpmiddleware.GetUserID(r.Context())
	if userID <= 0 {
		WriteErr(w, &apperr.Error{Code: http.StatusUnauthorized, Message: "Sesión inválida."})
		return
	}

	var payload passwordRecoveryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	if err := h.users.PasswordRecovery(r.Context(), userID, payload.NewPassword); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "La contraseña se ha cambiado correctamente.")
}

// PasswordUpdate cambia la contraseña del usuario autenticado.
func (h *Handler) PasswordUpdate(w http.ResponseWriter, r *http.Request) {
	userID := httpmiddleware.GetUserID(r.Context())
	if userID <= 0 {
		WriteErr(w, &apperr.Error{Code: http.StatusUnauthorized, Message: "Sesión inválida."})
		return
	}

	var payload passwordUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	if err := h.users.PasswordUpdate(r.Context(), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "La contraseña se ha cambiado correctamente.")
}
