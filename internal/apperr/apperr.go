package apperr

import (
	"errors"
	"fmt"
)

// Error es el error de dominio que viaja hasta la capa HTTP, donde se
// traduce al sobre de resultado uniforme {code, success, response, message}.
type Error struct {
	Code    int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NotFound indica entidad referenciada ausente.
func NotFound(message string) *Error {
	return &Error{Code: 404, Message: message}
}

// Conflict indica que la operación violaría un invariante.
func Conflict(message string) *Error {
	return &Error{Code: 409, Message: message}
}

// Invalid indica un valor provisto por el llamador fuera del vocabulario.
func Invalid(message string) *Error {
	return &Error{Code: 400, Message: message}
}

// Inconsistency indica datos semilla faltantes: defecto de despliegue,
// no un error del llamador.
func Inconsistency(message string) *Error {
	return &Error{Code: 500, Message: message}
}

// Internal envuelve una falla no manejada de la capa de persistencia.
func Internal(err error) *Error {
	return &Error{Code: 500, Message: "Error interno del servidor, vuelva a intentarlo.", cause: err}
}

// From normaliza cualquier error a *Error; los errores desconocidos se
// envuelven como Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
