package client

import "time"

// Client representa un cliente al que se le venden baterías.
type Client struct {
	ID             int       `json:"id"`
	NationalID     string    `json:"national_id"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	RegisteredDate time.Time `json:"registered_date"`
}

// RegisterInput encapsula los campos para el alta de un cliente.
type RegisterInput struct {
	NationalID  string
	Name        string
	LastName    string
	Email       string
	PhoneNumber string
}

// UpdateInput permite actualizar datos de contacto.
type UpdateInput struct {
	ID          int
	Name        *string
	LastName    *string
	Email       *string
	PhoneNumber *string
}

// SearchResponse agrega el listado con su total.
type SearchResponse struct {
	TotalClients int      `json:"total_clients"`
	Clients      []Client `json:"clients"`
}
