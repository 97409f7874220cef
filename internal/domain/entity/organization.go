package entity

import "time"

// Tipos de unidad organizacional. La contención es estricta:
// cada Department pertenece a una Enterprise y cada Clinic a un Department.
const (
	UnitEnterprise = "enterprise"
	UnitDepartment = "department"
	UnitClinic     = "clinic"
)

// OrgUnit es una unidad del árbol organizacional (empresa, departamento o clínica).
// ParentID es nil solo para empresas.
type OrgUnit struct {
	ID           string
	EnterpriseID string // raíz del subárbol; igual a ID para empresas
	ParentID     *string
	Kind         string // enterprise, department, clinic
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot informa si la unidad es una empresa (raíz del árbol).
func (u *OrgUnit) IsRoot() bool {
	return u.Kind == UnitEnterprise
}
