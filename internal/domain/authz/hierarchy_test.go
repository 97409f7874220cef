package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
)

// El registro es cerrado y el orden es fijo en despliegue.
func TestLevel_OrdenTotalFijo(t *testing.T) {
	casos := []struct {
		jerarquia string
		nivel     int
	}{
		{authz.HierarchySuperAdmin, 100},
		{authz.HierarchyAdminEmpresa, 90},
		{authz.HierarchyMedicoEspecial, 70},
		{authz.HierarchyMedicoTrabajo, 70},
		{authz.HierarchyEnfermera, 50},
		{authz.HierarchyAudiometrista, 50},
		{authz.HierarchyPsicologoLaboral, 50},
		{authz.HierarchyTecnicoErgonomico, 50},
		{authz.HierarchyRecepcion, 30},
		{authz.HierarchyPaciente, 10},
		{authz.HierarchyBot, 0},
	}
	for _, c := range casos {
		lvl, err := authz.Level(c.jerarquia)
		require.NoError(t, err, "jerarquía %s debe estar registrada", c.jerarquia)
		assert.Equal(t, c.nivel, lvl, "nivel de %s", c.jerarquia)
	}
}

func TestLevel_JerarquiaDesconocida(t *testing.T) {
	_, err := authz.Level("gerente_regional")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownHierarchy,
		"un identificador fuera del registro es un bug de configuración, no una denegación")
}

func TestCompare(t *testing.T) {
	ord, err := authz.Compare(authz.HierarchyAdminEmpresa, authz.HierarchyRecepcion)
	require.NoError(t, err)
	assert.Equal(t, authz.Greater, ord)

	ord, err = authz.Compare(authz.HierarchyPaciente, authz.HierarchyEnfermera)
	require.NoError(t, err)
	assert.Equal(t, authz.Less, ord)

	// Niveles compartidos dentro del equipo clínico.
	ord, err = authz.Compare(authz.HierarchyMedicoEspecial, authz.HierarchyMedicoTrabajo)
	require.NoError(t, err)
	assert.Equal(t, authz.Equal, ord)

	_, err = authz.Compare(authz.HierarchyAdminEmpresa, "auditor_externo")
	assert.ErrorIs(t, err, domain.ErrUnknownHierarchy)
}

func TestIsPlatform(t *testing.T) {
	assert.True(t, authz.IsPlatform(authz.HierarchySuperAdmin))
	assert.False(t, authz.IsPlatform(authz.HierarchyAdminEmpresa))
	assert.False(t, authz.IsPlatform("desconocida"))
}
