package entity

import "time"

// Estados válidos para User.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// User representa un usuario del sistema. EnterpriseID es la clave de partición
// multi-tenant: ninguna consulta ni mutación cruza esa frontera salvo para la
// jerarquía de plataforma (super_admin).
type User struct {
	ID           string
	EnterpriseID string
	Email        string
	Name         string
	Phone        string
	Hierarchy    string  // id de jerarquía registrado en authz (admin_empresa, enfermera, ...)
	Status       string  // active, inactive, suspended, pending
	DepartmentID *string // ubicación opcional en el árbol organizacional
	ClinicID     *string // si está presente junto a DepartmentID, la clínica debe pertenecer a ese departamento
	ReportsTo    *string // jefe directo; forma un bosque, nunca un ciclo
	Version      int64   // token de concurrencia optimista
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive informa si el usuario puede operar.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
