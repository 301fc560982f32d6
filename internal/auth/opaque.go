package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// NewOpaqueSecret genera `length` bytes aleatorios criptográficamente
// seguros y los devuelve codificados en base64. Es la mitad secreta de los
// tokens opacos de recuperación/bienvenida; nunca se persiste en claro.
func NewOpaqueSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
