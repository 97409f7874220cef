package dto

import "time"

// CreatePatientRequest alta de paciente.
type CreatePatientRequest struct {
	Document     string     `json:"document"`
	Name         string     `json:"name"`
	BirthDate    *time.Time `json:"birth_date"`
	DepartmentID *string    `json:"department_id"`
	ClinicID     *string    `json:"clinic_id"`
}

// PatientResponse proyección de la ficha de paciente.
type PatientResponse struct {
	ID           string     `json:"id"`
	EnterpriseID string     `json:"enterprise_id"`
	DepartmentID *string    `json:"department_id,omitempty"`
	ClinicID     *string    `json:"clinic_id,omitempty"`
	Document     string     `json:"document"`
	Name         string     `json:"name"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PatientListResponse página de pacientes.
type PatientListResponse struct {
	Items []PatientResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
