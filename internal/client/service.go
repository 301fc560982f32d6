package client

import (
	"context"
	"errors"
	"strings"

	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/apperr"
	"github.com/JoseNex2/Grano-de-Arroz-Back-end/internal/util"
)

type clientRepository interface {
	Create(ctx context.Context, input RegisterInput) (*Client, error)
	GetByID(ctx context.Context, id int) (*Client, error)
	FindByNationalIDOrEmail(ctx context.Context, nationalID, email string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, input UpdateInput) (*Client, error)
	Delete(ctx context.Context, id int) error
}

// Service reúne las reglas de negocio de clientes.
type Service struct {
	repo clientRepository
}

// NewService crea una nueva instancia del servicio.
func NewService(repo clientRepository) *Service {
	return &Service{repo: repo}
}

// Register da de alta un cliente; cédula y email deben ser únicos.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Client, error) {
	input.NationalID = strings.TrimSpace(input.NationalID)
	input.Email = strings.TrimSpace(input.Email)

	if err := util.RequireString(input.NationalID, "cédula"); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if err := util.RequireString(input.Name, "nombre"); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, apperr.Invalid(err.Error())
	}

	existing, err := s.repo.FindByNationalIDOrEmail(ctx, input.NationalID, input.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Cliente ya registrado.")
	}

	created, err := s.repo.Create(ctx, input)
	if err != nil {
		// Carrera perdida contra otro alta concurrente: el UNIQUE decide.
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("Cliente ya registrado.")
		}
		return nil, apperr.Internal(err)
	}
	return created, nil
}

// Search devuelve todos los clientes con su total.
func (s *Service) Search(ctx context.Context) (*SearchResponse, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if clients == nil {
		clients = []Client{}
	}
	return &SearchResponse{TotalClients: len(clients), Clients: clients}, nil
}

// Get recupera un cliente por id.
func (s *Service) Get(ctx context.Context, id int) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Cliente no encontrado.")
		}
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// Update modifica datos de contacto.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Client, error) {
	if input.Email != nil {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, apperr.Invalid(err.Error())
		}
	}

	updated, err := s.repo.Update(ctx, input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Cliente no encontrado.")
		}
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("Ya existe un cliente con esos datos.")
		}
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

// Delete elimina el cliente.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Cliente no encontrado.")
		}
		return apperr.Internal(err)
	}
	return nil
}
