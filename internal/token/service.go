package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/auth"
)

type credentialStore interface {
	Create(ctx context.Context, t SecureToken) (int, error)
	ClaimIfValid(ctx context.Context, id int, verify func(hash string) bool) (*SecureToken, error)
}

// Service genera y valida tokens opacos de un solo uso.
type Service struct {
	store  credentialStore
	length int
}

// NewService crea el servicio; length es la cantidad de bytes aleatorios
// del secreto.
func NewService(store credentialStore, length int) *Service {
	return &Service{store: store, length: length}
}

// Generate crea un token opaco para el usuario y devuelve su forma externa
// "{id}-{secreto}". El id va en claro a propósito: permite buscar la fila
// en O(1) en lugar de comparar el hash contra todos los tokens vivos; solo
// la mitad secreta es confidencial. Cualquier falla de persistencia se
// devuelve como error, nunca como string vacío.
func (s *Service) Generate(ctx context.Context, userID int, lifetime time.Duration) (string, error) {
	secret, err := auth.NewOpaqueSecret(s.length)
	if err != nil {
		return "", fmt.Errorf("generar secreto: %w", err)
	}

	hash, err := auth.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("hashear secreto: %w", err)
	}

	now := time.Now().UTC()
	id, err := s.store.Create(ctx, SecureToken{
		UserID:      userID,
		TokenHash:   hash,
		ExpiredDate: now.Add(lifetime),
		Used:        false,
		CreatedDate: now,
	})
	if err != nil {
		return "", fmt.Errorf("persistir token: %w", err)
	}

	return fmt.Sprintf("%d-%s", id, secret), nil
}

// Validate parsea el token externo en el primer '-', reclama la fila viva
// y verifica el secreto. Un token valida con éxito a lo sumo una vez;
// después de eso (o pasada su expiración) devuelve ErrInvalid.
func (s *Service) Validate(ctx context.Context, raw string) (*SecureToken, error) {
	idPart, secretPart, found := strings.Cut(raw, "-")
	if !found || idPart == "" || secretPart == "" {
		return nil, ErrInvalid
	}

	id, err := strconv.Atoi(idPart)
	if err != nil {
		return nil, ErrInvalid
	}

	claimed, err := s.store.ClaimIfValid(ctx, id, func(hash string) bool {
		ok, verr := auth.Verify(secretPart, hash)
		return verr == nil && ok
	})
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return nil, ErrInvalid
		}
		return nil, err
	}

	return claimed, nil
}
