package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
)

// Para un rol con comodín, toda acción sobre todo módulo está permitida.
func TestCanPerformAction_ComodinCubreTodo(t *testing.T) {
	modulos := []string{
		authz.ModuleUsuarios, authz.ModulePacientes, authz.ModuleExamenes,
		authz.ModuleCitas, authz.ModuleFacturacion, authz.ModuleReportes,
		authz.ModuleEmpresas, authz.ModuleConfiguracion,
	}
	for _, mod := range modulos {
		for _, accion := range authz.AllActions {
			assert.True(t, authz.CanPerformAction(authz.HierarchySuperAdmin, mod, accion),
				"super_admin debe poder %s sobre %s", accion, mod)
		}
	}
}

// Sin entrada para el módulo → conjunto vacío: denegar por defecto.
func TestGrantsFor_DenegarPorDefecto(t *testing.T) {
	assert.Empty(t, authz.GrantsFor(authz.HierarchyRecepcion, authz.ModuleFacturacion),
		"recepción no tiene entrada para facturación")
	assert.Empty(t, authz.GrantsFor(authz.HierarchyBot, authz.ModulePacientes),
		"bot no tiene ningún módulo")
	assert.Empty(t, authz.GrantsFor("jerarquia_inexistente", authz.ModulePacientes),
		"jerarquía sin configuración no recibe permisos")
	assert.False(t, authz.CanPerformAction(authz.HierarchyPaciente, authz.ModuleUsuarios, authz.ActionRead))
}

// Un módulo literal llamado "*" no activa el comodín: el comodín es un valor
// etiquetado en la tabla, no un nombre mágico.
func TestGrantsFor_ModuloLiteralAsteriscoNoEsComodin(t *testing.T) {
	assert.Empty(t, authz.GrantsFor(authz.HierarchyAdminEmpresa, "*"))
	assert.False(t, authz.CanPerformAction(authz.HierarchyEnfermera, "*", authz.ActionRead))
}

func TestGrantsFor_SubRegistroDeModulo(t *testing.T) {
	grants := authz.GrantsFor(authz.HierarchyAdminEmpresa, authz.ModuleUsuarios)
	assert.True(t, grants.Has(authz.ActionCreate))
	assert.True(t, grants.Has(authz.ActionUpdate))
	assert.True(t, grants.Has(authz.ActionDelete))
	assert.False(t, grants.Has(authz.ActionImport),
		"admin_empresa no importa usuarios en bloque")

	grants = authz.GrantsFor(authz.HierarchyAudiometrista, authz.ModuleExamenes)
	assert.True(t, grants.Has(authz.ActionCreate))
	assert.False(t, grants.Has(authz.ActionDelete))
	assert.False(t, grants.Has(authz.ActionExport))
}

// Toda jerarquía registrada tiene entrada en la matriz: la validación de carga
// ya corrió en init; aquí se comprueba la propiedad observable.
func TestMatriz_CompletaParaTodasLasJerarquias(t *testing.T) {
	for _, h := range authz.Hierarchies() {
		// GrantsFor nunca entra en pánico ni devuelve nil inutilizable.
		grants := authz.GrantsFor(h, authz.ModulePacientes)
		assert.NotNil(t, grants, "jerarquía %s", h)
	}
}

func TestActionSet_ActionsOrdenEstable(t *testing.T) {
	grants := authz.GrantsFor(authz.HierarchySuperAdmin, authz.ModuleCitas)
	acciones := grants.Actions()
	assert.Len(t, acciones, len(authz.AllActions))
	for i := 1; i < len(acciones); i++ {
		assert.Less(t, string(acciones[i-1]), string(acciones[i]), "orden lexicográfico estable")
	}
}
