package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
)

func TestVisibleNavigation_FiltraPorPermisoDeLectura(t *testing.T) {
	// Recepción solo lee pacientes y citas.
	items := authz.VisibleNavigation(authz.HierarchyRecepcion)
	require.Len(t, items, 2)
	assert.Equal(t, authz.ModulePacientes, items[0].Module)
	assert.Equal(t, authz.ModuleCitas, items[1].Module)
}

func TestVisibleNavigation_ComodinVeTodo(t *testing.T) {
	items := authz.VisibleNavigation(authz.HierarchySuperAdmin)
	assert.Len(t, items, 8, "el comodín habilita todos los módulos visibles")
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].Order, items[i].Order, "orden estable de la tabla")
	}
}

func TestVisibleNavigation_SinPermisos(t *testing.T) {
	assert.Empty(t, authz.VisibleNavigation(authz.HierarchyBot))
	assert.Empty(t, authz.VisibleNavigation("rol_fantasma"), "jerarquía desconocida no ve nada")
}
