package entity

import "time"

// Patient representa la ficha de un paciente. Como recurso con alcance
// organizacional, los listados siempre se intersectan con el alcance del actor.
type Patient struct {
	ID           string
	EnterpriseID string
	DepartmentID *string
	ClinicID     *string
	UserID       *string // usuario asociado cuando el paciente tiene cuenta propia
	Document     string  // documento de identidad
	Name         string
	BirthDate    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
