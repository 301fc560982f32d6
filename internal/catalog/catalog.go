// Package catalog carga el vocabulario fijo de estados (reportes y
// mediciones) y lo expone como un mapa bidireccional nombre↔id. Todos los
// caminos de código resuelven estados a través del catálogo: no hay ids
// numéricos fijos en el resto del sistema.
package catalog

import (
	"context"
	"fmt"
)

// Nombres canónicos del catálogo sembrado por cmd/seed.
const (
	StatusPending  = "Pendiente"
	StatusApproved = "Aprobado"
	StatusRejected = "Desaprobado"
)

// Status es una entrada del catálogo compartido por Report y
// MeasurementStatus.
type Status struct {
	ID   int
	Name string
}

// Catalog mantiene el vocabulario resuelto una sola vez al arranque.
// Es inmutable después de Load, por lo que puede compartirse entre requests.
type Catalog struct {
	byName map[string]Status
	byID   map[int]Status
}

// New construye un catálogo a partir de las filas cargadas. Falla si alguno
// de los estados obligatorios (Pendiente, Aprobado, Desaprobado) no está
// presente: es un invariante de despliegue, no un error de usuario.
func New(statuses []Status) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]Status, len(statuses)),
		byID:   make(map[int]Status, len(statuses)),
	}
	for _, s := range statuses {
		c.byName[s.Name] = s
		c.byID[s.ID] = s
	}

	for _, required := range []string{StatusPending, StatusApproved, StatusRejected} {
		if _, ok := c.byName[required]; !ok {
			return nil, fmt.Errorf("el estado '%s' no existe en la base de datos", required)
		}
	}

	return c, nil
}

// Load lee el catálogo completo desde el repositorio y lo valida.
func Load(ctx context.Context, repo *Repository) (*Catalog, error) {
	statuses, err := repo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return New(statuses)
}

// ByName resuelve un estado por nombre exacto.
func (c *Catalog) ByName(name string) (Status, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// ByID resuelve un estado por id.
func (c *Catalog) ByID(id int) (Status, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Pending devuelve la entrada Pendiente.
func (c *Catalog) Pending() Status { return c.byName[StatusPending] }

// Approved devuelve la entrada Aprobado.
func (c *Catalog) Approved() Status { return c.byName[StatusApproved] }

// Rejected devuelve la entrada Desaprobado.
func (c *Catalog) Rejected() Status { return c.byName[StatusRejected] }
