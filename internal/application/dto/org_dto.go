package dto

import "time"

// CreateOrgUnitRequest alta de unidad organizacional.
// ParentID es obligatorio salvo para empresas.
type CreateOrgUnitRequest struct {
	Kind     string  `json:"kind"` // enterprise, department, clinic
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// OrgUnitResponse proyección de una unidad del árbol.
type OrgUnitResponse struct {
	ID           string    `json:"id"`
	EnterpriseID string    `json:"enterprise_id"`
	ParentID     *string   `json:"parent_id,omitempty"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrgTreeResponse subárbol visible para el actor.
type OrgTreeResponse struct {
	Units []OrgUnitResponse `json:"units"`
}
