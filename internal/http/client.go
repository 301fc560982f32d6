package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/client"
)

type clientRegisterPayload struct {
	NationalID  string `json:"national_id"`
	Name        string `json:"name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type clientUpdatePayload struct {
	Name        *string `json:"name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// ClientRegister da de alta un cliente.
func (h *Handler) ClientRegister(w http.ResponseWriter, r *http.Request) {
	var payload clientRegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	created, err := h.clients.Register(r.Context(), client.RegisterInput{
		NationalID:  payload.NationalID,
		Name:        payload.Name,
		LastName:    payload.LastName,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
	})
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusCreated, created, "Cliente registrado.")
}

// ClientsSearch lista todos los clientes con su total.
func (h *Handler) ClientsSearch(w http.ResponseWriter, r *http.Request) {
	response, err := h.clients.Search(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, response, "")
}

// ClientSearch devuelve un cliente por id.
func (h *Handler) ClientSearch(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || clientID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de cliente inválido."))
		return
	}

	found, err := h.clients.Get(r.Context(), clientID)
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, found, "")
}

// ClientUpdate actualiza los datos de contacto de un cliente.
func (h *Handler) ClientUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || clientID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de cliente inválido."))
		return
	}

	var payload clientUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteErr(w, apperr.Invalid("JSON inválido."))
		return
	}

	updated, err := h.clients.Update(r.Context(), client.UpdateInput{
		ID:          clientID,
		Name:        payload.Name,
		LastName:    payload.LastName,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
	})
	if err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, updated, "Cliente actualizado correctamente.")
}

// ClientDelete elimina un cliente.
func (h *Handler) ClientDelete(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || clientID <= 0 {
		WriteErr(w, apperr.Invalid("Identificador de cliente inválido."))
		return
	}

	if err := h.clients.Delete(r.Context(), clientID); err != nil {
		WriteErr(w, err)
		return
	}

	WriteOK(w, http.StatusOK, nil, "Cliente borrado correctamente.")
}
