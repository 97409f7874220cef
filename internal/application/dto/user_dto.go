package dto

import "time"

// CreateUserRequest alta de usuario dentro de una empresa.
type CreateUserRequest struct {
	EnterpriseID string  `json:"enterprise_id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Hierarchy    string  `json:"hierarchy"`
	DepartmentID *string `json:"department_id"`
	ClinicID     *string `json:"clinic_id"`
}

// UpdateUserRequest actualización de datos básicos (no de estado ni jerarquía).
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	DepartmentID *string `json:"department_id"`
	ClinicID     *string `json:"clinic_id"`
	Version      int64   `json:"version"`
}

// GuardedPatchRequest cambio protegido de estado o jerarquía.
// Version es el token de concurrencia optimista leído por el cliente.
type GuardedPatchRequest struct {
	Status    *string `json:"status"`
	Hierarchy *string `json:"hierarchy"`
	Version   int64   `json:"version"`
}

// AssignManagerRequest asignación o retiro de jefe directo.
// ManagerID nil retira el jefe (siempre permitido).
type AssignManagerRequest struct {
	ManagerID *string `json:"manager_id"`
	Version   int64   `json:"version"`
}

// UserResponse proyección pública de un usuario.
type UserResponse struct {
	ID           string    `json:"id"`
	EnterpriseID string    `json:"enterprise_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Hierarchy    string    `json:"hierarchy"`
	Status       string    `json:"status"`
	DepartmentID *string   `json:"department_id,omitempty"`
	ClinicID     *string   `json:"clinic_id,omitempty"`
	ReportsTo    *string   `json:"reports_to,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
