package user

import "time"

// Nombres de los roles sembrados por cmd/seed.
const (
	RoleAdministrator = "Administrador"
	RoleBranch        = "Sucursal"
	RoleLab           = "Laboratorio"
)

// User representa un colaborador del back office.
type User struct {
	ID             int
	Name           string
	Lastname       string
	Email          string
	NationalID     string
	PhoneNumber    string
	PasswordHash   string
	RegisteredDate time.Time
	RoleID         int
	RoleName       string
}

// Role es el papel del colaborador.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RegisterInput encapsula los campos para el alta de un usuario.
type RegisterInput struct {
	Name        string
	Lastname    string
	Email       string
	NationalID  string
	PhoneNumber string
	RoleID      int
}

// View es la proyección pública de un usuario.
type View struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Lastname       string    `json:"lastname"`
	Email          string    `json:"email"`
	NationalID     string    `json:"national_id"`
	PhoneNumber    string    `json:"phone_number"`
	Role           string    `json:"role"`
	RegisteredDate time.Time `json:"registered_date"`
}

// LoginResponse es la vista del usuario autenticado con su token de sesión.
type LoginResponse struct {
	View
	Token string `json:"token"`
}

// RecoveryResponse devuelve el token de recuperación y la URL armada para
// el frontend.
type RecoveryResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func (u User) view() View {
	return View{
		ID:             u.ID,
		Name:           u.Name,
		Lastname:       u.Lastname,
		Email:          u.Email,
		NationalID:     u.NationalID,
		PhoneNumber:    u.PhoneNumber,
		Role:           u.RoleName,
		RegisteredDate: u.RegisteredDate,
	}
}
