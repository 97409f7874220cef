package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

// Árbol de prueba: E1 → D1 → {C1, C2}; E1 → D2 → C3; E2 → D3.
func buildTree(t *testing.T) *authz.OrgTree {
	t.Helper()
	units := []entity.OrgUnit{
		{ID: "E1", EnterpriseID: "E1", Kind: entity.UnitEnterprise, Name: "Minera Andina"},
		{ID: "D1", EnterpriseID: "E1", ParentID: strPtr("E1"), Kind: entity.UnitDepartment, Name: "Operaciones"},
		{ID: "C1", EnterpriseID: "E1", ParentID: strPtr("D1"), Kind: entity.UnitClinic, Name: "Clínica Norte"},
		{ID: "C2", EnterpriseID: "E1", ParentID: strPtr("D1"), Kind: entity.UnitClinic, Name: "Clínica Sur"},
		{ID: "D2", EnterpriseID: "E1", ParentID: strPtr("E1"), Kind: entity.UnitDepartment, Name: "Administración"},
		{ID: "C3", EnterpriseID: "E1", ParentID: strPtr("D2"), Kind: entity.UnitClinic, Name: "Clínica Central"},
		{ID: "E2", EnterpriseID: "E2", Kind: entity.UnitEnterprise, Name: "Textiles del Pacífico"},
		{ID: "D3", EnterpriseID: "E2", ParentID: strPtr("E2"), Kind: entity.UnitDepartment, Name: "Planta"},
	}
	tree, err := authz.NewOrgTree(units)
	require.NoError(t, err)
	return tree
}

func TestNewOrgTree_RechazaEstructuraInvalida(t *testing.T) {
	// Departamento sin padre.
	_, err := authz.NewOrgTree([]entity.OrgUnit{
		{ID: "D1", Kind: entity.UnitDepartment, Name: "Suelto"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Clínica colgando directamente de una empresa.
	_, err = authz.NewOrgTree([]entity.OrgUnit{
		{ID: "E1", Kind: entity.UnitEnterprise},
		{ID: "C1", ParentID: strPtr("E1"), Kind: entity.UnitClinic},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Unidad duplicada (multi-padre encubierto).
	_, err = authz.NewOrgTree([]entity.OrgUnit{
		{ID: "E1", Kind: entity.UnitEnterprise},
		{ID: "E1", Kind: entity.UnitEnterprise},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAncestorsOf(t *testing.T) {
	tree := buildTree(t)

	chain, err := tree.AncestorsOf("C1")
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "C1", chain[0].ID)
	assert.Equal(t, "D1", chain[1].ID)
	assert.Equal(t, "E1", chain[2].ID)

	chain, err = tree.AncestorsOf("E2")
	require.NoError(t, err)
	require.Len(t, chain, 1)

	_, err = tree.AncestorsOf("X9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIsDescendant(t *testing.T) {
	tree := buildTree(t)

	assert.True(t, tree.IsDescendant("C1", "D1"))
	assert.True(t, tree.IsDescendant("C1", "E1"))
	assert.True(t, tree.IsDescendant("D2", "E1"))
	assert.False(t, tree.IsDescendant("C1", "D2"), "clínicas hermanas de otro departamento")
	assert.False(t, tree.IsDescendant("D1", "C1"), "la contención no es simétrica")
	assert.False(t, tree.IsDescendant("D3", "E1"), "nunca cruza la frontera de empresa")
}

func TestVisibleScopeOf_PorClaseDeJerarquia(t *testing.T) {
	casos := []struct {
		nombre string
		actor  entity.User
		kind   authz.ScopeKind
		unit   string
	}{
		{"plataforma", entity.User{Hierarchy: authz.HierarchySuperAdmin, EnterpriseID: "E1"}, authz.ScopePlatform, ""},
		{"admin de empresa", entity.User{Hierarchy: authz.HierarchyAdminEmpresa, EnterpriseID: "E1"}, authz.ScopeEnterprise, "E1"},
		{"jefe de departamento", entity.User{Hierarchy: authz.HierarchyMedicoTrabajo, EnterpriseID: "E1", DepartmentID: strPtr("D1")}, authz.ScopeDepartment, "D1"},
		{"personal de clínica", entity.User{Hierarchy: authz.HierarchyEnfermera, EnterpriseID: "E1", DepartmentID: strPtr("D1"), ClinicID: strPtr("C1")}, authz.ScopeClinic, "C1"},
		{"paciente", entity.User{Hierarchy: authz.HierarchyPaciente, EnterpriseID: "E1", ClinicID: strPtr("C1")}, authz.ScopeNone, ""},
		{"bot", entity.User{Hierarchy: authz.HierarchyBot, EnterpriseID: "E1"}, authz.ScopeNone, ""},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			scope, err := authz.VisibleScopeOf(&c.actor)
			require.NoError(t, err)
			assert.Equal(t, c.kind, scope.Kind)
			assert.Equal(t, c.unit, scope.UnitID)
		})
	}
}

func TestVisibleScopeOf_JerarquiaDesconocida(t *testing.T) {
	_, err := authz.VisibleScopeOf(&entity.User{Hierarchy: "practicante", EnterpriseID: "E1"})
	assert.ErrorIs(t, err, domain.ErrUnknownHierarchy)
}

// El alcance nunca incluye unidades de otra empresa, salvo jerarquía plataforma.
func TestScopeContains_AislamientoDeTenant(t *testing.T) {
	tree := buildTree(t)

	admin := entity.User{Hierarchy: authz.HierarchyAdminEmpresa, EnterpriseID: "E1"}
	scope, err := authz.VisibleScopeOf(&admin)
	require.NoError(t, err)
	assert.True(t, scope.Contains("C2", tree))
	assert.False(t, scope.Contains("D3", tree), "unidad de E2 invisible para admin de E1")

	root := entity.User{Hierarchy: authz.HierarchySuperAdmin, EnterpriseID: "E1"}
	scope, err = authz.VisibleScopeOf(&root)
	require.NoError(t, err)
	assert.True(t, scope.Contains("D3", tree), "plataforma ve todas las empresas")
}

func TestScopeContains_AlcanceDeClinica(t *testing.T) {
	tree := buildTree(t)
	enfermera := entity.User{Hierarchy: authz.HierarchyEnfermera, EnterpriseID: "E1", DepartmentID: strPtr("D1"), ClinicID: strPtr("C1")}
	scope, err := authz.VisibleScopeOf(&enfermera)
	require.NoError(t, err)

	assert.True(t, scope.Contains("C1", tree))
	assert.False(t, scope.Contains("C2", tree), "clínica hermana fuera de alcance")
	assert.False(t, scope.Contains("D1", tree), "no ve el departamento completo")
}
