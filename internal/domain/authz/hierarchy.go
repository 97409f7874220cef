// Package authz implementa el núcleo de autorización: registro de jerarquías,
// matriz de permisos, árbol de alcance organizacional y validación del grafo
// de reporte. Todo el paquete es puro: configuración estática más snapshots,
// sin I/O, evaluable desde cualquier goroutine.
package authz

import (
	"fmt"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
)

// Jerarquías del sistema. El orden numérico es fijo en despliegue.
const (
	HierarchySuperAdmin        = "super_admin"
	HierarchyAdminEmpresa      = "admin_empresa"
	HierarchyMedicoEspecial    = "medico_especialista"
	HierarchyMedicoTrabajo     = "medico_trabajo"
	HierarchyEnfermera         = "enfermera"
	HierarchyAudiometrista     = "audiometrista"
	HierarchyPsicologoLaboral  = "psicologo_laboral"
	HierarchyTecnicoErgonomico = "tecnico_ergonomico"
	HierarchyRecepcion         = "recepcion"
	HierarchyPaciente          = "paciente"
	HierarchyBot               = "bot"
)

// PlatformMaxLevel es el nivel de la jerarquía de plataforma, exenta de la
// partición por empresa.
const PlatformMaxLevel = 100

// hierarchyLevels es la tabla cerrada y estática de niveles. Varias jerarquías
// comparten nivel (equipo clínico = 50); la igualdad nunca habilita reporte.
var hierarchyLevels = map[string]int{
	HierarchySuperAdmin:        100,
	HierarchyAdminEmpresa:      90,
	HierarchyMedicoEspecial:    70,
	HierarchyMedicoTrabajo:     70,
	HierarchyEnfermera:         50,
	HierarchyAudiometrista:     50,
	HierarchyPsicologoLaboral:  50,
	HierarchyTecnicoErgonomico: 50,
	HierarchyRecepcion:         30,
	HierarchyPaciente:          10,
	HierarchyBot:               0,
}

// Ordering resultado de comparar dos jerarquías.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Level devuelve el nivel numérico de una jerarquía registrada.
// Falla con ErrUnknownHierarchy para cualquier identificador fuera del registro:
// un miss aquí es un bug de configuración, no una condición de negocio.
func Level(hierarchyID string) (int, error) {
	lvl, ok := hierarchyLevels[hierarchyID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownHierarchy, hierarchyID)
	}
	return lvl, nil
}

// Compare ordena dos jerarquías por nivel.
func Compare(a, b string) (Ordering, error) {
	la, err := Level(a)
	if err != nil {
		return Equal, err
	}
	lb, err := Level(b)
	if err != nil {
		return Equal, err
	}
	switch {
	case la > lb:
		return Greater, nil
	case la < lb:
		return Less, nil
	default:
		return Equal, nil
	}
}

// IsPlatform informa si la jerarquía es de nivel plataforma (ve todas las empresas).
func IsPlatform(hierarchyID string) bool {
	return hierarchyLevels[hierarchyID] == PlatformMaxLevel
}

// Known informa si el identificador pertenece al registro.
func Known(hierarchyID string) bool {
	_, ok := hierarchyLevels[hierarchyID]
	return ok
}

// Hierarchies devuelve los identificadores registrados (orden no garantizado).
func Hierarchies() []string {
	ids := make([]string, 0, len(hierarchyLevels))
	for id := range hierarchyLevels {
		ids = append(ids, id)
	}
	return ids
}
