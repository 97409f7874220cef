package authz

import (
	"fmt"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// OrgTree es un snapshot inmutable del árbol organizacional: unidades en un
// arena plano indexado por id, con aristas padre por id. Se reconstruye desde
// el directorio; nunca se muta en sitio.
type OrgTree struct {
	units []entity.OrgUnit
	index map[string]int
}

// NewOrgTree construye el snapshot y valida que la contención sea un árbol:
// sin ciclos, sin multi-padre, padres del tipo correcto.
func NewOrgTree(units []entity.OrgUnit) (*OrgTree, error) {
	t := &OrgTree{
		units: make([]entity.OrgUnit, len(units)),
		index: make(map[string]int, len(units)),
	}
	copy(t.units, units)
	for i, u := range t.units {
		if _, dup := t.index[u.ID]; dup {
			return nil, fmt.Errorf("%w: unidad duplicada %q", domain.ErrValidation, u.ID)
		}
		t.index[u.ID] = i
	}
	for _, u := range t.units {
		switch u.Kind {
		case entity.UnitEnterprise:
			if u.ParentID != nil {
				return nil, fmt.Errorf("%w: la empresa %q no puede tener padre", domain.ErrValidation, u.ID)
			}
		case entity.UnitDepartment, entity.UnitClinic:
			if u.ParentID == nil {
				return nil, fmt.Errorf("%w: la unidad %q requiere padre", domain.ErrValidation, u.ID)
			}
			parent, ok := t.unit(*u.ParentID)
			if !ok {
				return nil, fmt.Errorf("%w: padre %q de %q no existe", domain.ErrValidation, *u.ParentID, u.ID)
			}
			wantParent := entity.UnitEnterprise
			if u.Kind == entity.UnitClinic {
				wantParent = entity.UnitDepartment
			}
			if parent.Kind != wantParent {
				return nil, fmt.Errorf("%w: la unidad %q (%s) no puede colgar de %q (%s)",
					domain.ErrValidation, u.ID, u.Kind, parent.ID, parent.Kind)
			}
		default:
			return nil, fmt.Errorf("%w: tipo de unidad desconocido %q", domain.ErrValidation, u.Kind)
		}
	}
	return t, nil
}

// Units devuelve una copia de las unidades del snapshot.
func (t *OrgTree) Units() []entity.OrgUnit {
	out := make([]entity.OrgUnit, len(t.units))
	copy(out, t.units)
	return out
}

func (t *OrgTree) unit(id string) (entity.OrgUnit, bool) {
	i, ok := t.index[id]
	if !ok {
		return entity.OrgUnit{}, false
	}
	return t.units[i], true
}

// AncestorsOf devuelve la cadena [unidad, ..., empresa] desde la unidad dada
// hacia la raíz, incluida la propia unidad.
func (t *OrgTree) AncestorsOf(unitID string) ([]entity.OrgUnit, error) {
	u, ok := t.unit(unitID)
	if !ok {
		return nil, fmt.Errorf("%w: unidad %q", domain.ErrNotFound, unitID)
	}
	chain := []entity.OrgUnit{u}
	// Profundidad máxima 3 (clínica → departamento → empresa); el límite corta
	// cualquier ciclo que un snapshot corrupto pudiera introducir.
	for i := 0; u.ParentID != nil && i < 3; i++ {
		parent, ok := t.unit(*u.ParentID)
		if !ok {
			return nil, fmt.Errorf("%w: padre %q de %q", domain.ErrNotFound, *u.ParentID, u.ID)
		}
		chain = append(chain, parent)
		u = parent
	}
	return chain, nil
}

// IsDescendant informa si candidate está contenida (estrictamente o no) en ancestor.
func (t *OrgTree) IsDescendant(candidateID, ancestorID string) bool {
	chain, err := t.AncestorsOf(candidateID)
	if err != nil {
		return false
	}
	for _, u := range chain {
		if u.ID == ancestorID {
			return true
		}
	}
	return false
}

// EnterpriseOf devuelve la empresa raíz de una unidad.
func (t *OrgTree) EnterpriseOf(unitID string) (string, error) {
	chain, err := t.AncestorsOf(unitID)
	if err != nil {
		return "", err
	}
	root := chain[len(chain)-1]
	if root.Kind != entity.UnitEnterprise {
		return "", fmt.Errorf("%w: la unidad %q no cuelga de una empresa", domain.ErrValidation, unitID)
	}
	return root.ID, nil
}

// ScopeKind clase de alcance visible de un actor.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeClinic
	ScopeDepartment
	ScopeEnterprise
	ScopePlatform
)

// Scope es el subárbol organizacional que un actor puede ver o afectar.
type Scope struct {
	Kind   ScopeKind
	UnitID string // vacío para ScopePlatform y ScopeNone
}

// VisibleScopeOf resuelve el alcance de un actor según su jerarquía y su
// ubicación organizacional:
//   - plataforma (super_admin): todas las empresas;
//   - admin de empresa: su empresa completa;
//   - asignado a departamento: ese departamento y sus clínicas;
//   - asignado a clínica: esa única clínica;
//   - paciente y bot: sin alcance (solo registro propio, tratado aparte).
func VisibleScopeOf(actor *entity.User) (Scope, error) {
	if actor == nil {
		return Scope{}, domain.ErrValidation
	}
	lvl, err := Level(actor.Hierarchy)
	if err != nil {
		return Scope{}, err
	}
	switch {
	case lvl == PlatformMaxLevel:
		return Scope{Kind: ScopePlatform}, nil
	case actor.Hierarchy == HierarchyPaciente || actor.Hierarchy == HierarchyBot:
		return Scope{Kind: ScopeNone}, nil
	// El admin de empresa ve su empresa completa aunque tenga una unidad asignada.
	case actor.Hierarchy == HierarchyAdminEmpresa:
		return Scope{Kind: ScopeEnterprise, UnitID: actor.EnterpriseID}, nil
	case actor.ClinicID != nil:
		return Scope{Kind: ScopeClinic, UnitID: *actor.ClinicID}, nil
	case actor.DepartmentID != nil:
		return Scope{Kind: ScopeDepartment, UnitID: *actor.DepartmentID}, nil
	default:
		return Scope{Kind: ScopeEnterprise, UnitID: actor.EnterpriseID}, nil
	}
}

// Contains informa si la unidad está dentro del alcance, resolviendo la
// contención sobre el snapshot dado.
func (s Scope) Contains(unitID string, tree *OrgTree) bool {
	switch s.Kind {
	case ScopePlatform:
		return true
	case ScopeNone:
		return false
	default:
		return unitID == s.UnitID || (tree != nil && tree.IsDescendant(unitID, s.UnitID))
	}
}
