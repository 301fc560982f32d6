package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
)

// Envelope es el sobre de resultado uniforme de toda la API: los clientes
// ramifican solo sobre success y code, nunca sobre errores tipados.
type Envelope struct {
	Code     int    `json:"code"`
	Success  bool   `json:"success"`
	Response any    `json:"response"`
	Message  string `json:"message"`
}

// WriteOK escribe el sobre de éxito con el código indicado.
func WriteOK(w http.ResponseWriter, code int, response any, message string) {
	writeEnvelope(w, Envelope{Code: code, Success: true, Response: response, Message: message})
}

// WriteErr normaliza cualquier error del dominio al sobre de falla.
func WriteErr(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Code >= 500 {
		log.Error().Err(err).Msg("operación falló")
	}
	writeEnvelope(w, Envelope{Code: appErr.Code, Success: false, Response: nil, Message: appErr.Message})
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}
