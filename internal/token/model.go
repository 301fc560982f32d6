package token

import (
	"errors"
	"time"
)

var (
	// ErrInvalid cubre token inexistente, ya usado, expirado o con secreto
	// que no verifica. El llamador no distingue entre causas.
	ErrInvalid = errors.New("token inválido o expirado")
)

// SecureToken es la credencial opaca de un solo uso para los flujos de
// recuperación y bienvenida. Solo se persiste el hash del secreto.
type SecureToken struct {
	ID          int
	UserID      int
	TokenHash   string
	ExpiredDate time.Time
	Used        bool
	CreatedDate time.Time
}
