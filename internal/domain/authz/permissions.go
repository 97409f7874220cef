package authz

import (
	"fmt"
	"sort"
)

// Action acción CRUD-extendida sobre un módulo de negocio.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionImport Action = "import"
)

// AllActions es el conjunto canónico completo.
var AllActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport}

// Módulos de negocio sujetos a permisos.
const (
	ModuleUsuarios      = "usuarios"
	ModulePacientes     = "pacientes"
	ModuleExamenes      = "examenes"
	ModuleCitas         = "citas"
	ModuleFacturacion   = "facturacion"
	ModuleReportes      = "reportes"
	ModuleEmpresas      = "empresas"
	ModuleConfiguracion = "configuracion"
)

var knownModules = map[string]struct{}{
	ModuleUsuarios:      {},
	ModulePacientes:     {},
	ModuleExamenes:      {},
	ModuleCitas:         {},
	ModuleFacturacion:   {},
	ModuleReportes:      {},
	ModuleEmpresas:      {},
	ModuleConfiguracion: {},
}

// ActionSet conjunto de acciones permitidas.
type ActionSet map[Action]struct{}

// Has informa si la acción pertenece al conjunto.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Actions devuelve las acciones ordenadas (para respuestas estables).
func (s ActionSet) Actions() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// grant define lo permitido a una jerarquía. El comodín es un valor etiquetado
// explícito (All), nunca un nombre de módulo mágico: un módulo literal llamado
// "*" jamás activaría el comodín.
type grant struct {
	All     bool
	Modules map[string]ActionSet
}

// permissionMatrix es la tabla declarativa única, una entrada por jerarquía.
// Se valida en init: toda jerarquía registrada tiene entrada y todo módulo
// referenciado existe.
var permissionMatrix = map[string]grant{
	HierarchySuperAdmin: {All: true},
	HierarchyAdminEmpresa: {Modules: map[string]ActionSet{
		ModuleUsuarios:      newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ModulePacientes:     newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport),
		ModuleExamenes:      newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionExport),
		ModuleCitas:         newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ModuleFacturacion:   newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionExport),
		ModuleReportes:      newActionSet(ActionRead, ActionExport),
		ModuleEmpresas:      newActionSet(ActionRead, ActionUpdate),
		ModuleConfiguracion: newActionSet(ActionRead, ActionUpdate),
	}},
	HierarchyMedicoEspecial: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead, ActionUpdate, ActionExport),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionExport),
		ModuleCitas:     newActionSet(ActionRead, ActionUpdate),
		ModuleReportes:  newActionSet(ActionRead, ActionExport),
	}},
	HierarchyMedicoTrabajo: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead, ActionUpdate, ActionExport),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead, ActionUpdate, ActionExport),
		ModuleCitas:     newActionSet(ActionRead, ActionUpdate),
		ModuleReportes:  newActionSet(ActionRead),
	}},
	HierarchyEnfermera: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead, ActionUpdate),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead, ActionUpdate),
		ModuleCitas:     newActionSet(ActionRead, ActionUpdate),
	}},
	HierarchyAudiometrista: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead, ActionUpdate),
	}},
	HierarchyPsicologoLaboral: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead, ActionUpdate),
	}},
	HierarchyTecnicoErgonomico: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead),
		ModuleExamenes:  newActionSet(ActionCreate, ActionRead),
	}},
	HierarchyRecepcion: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionCreate, ActionRead, ActionUpdate),
		ModuleCitas:     newActionSet(ActionCreate, ActionRead, ActionUpdate),
	}},
	HierarchyPaciente: {Modules: map[string]ActionSet{
		ModulePacientes: newActionSet(ActionRead),
		ModuleCitas:     newActionSet(ActionCreate, ActionRead),
	}},
	HierarchyBot: {Modules: map[string]ActionSet{}},
}

func init() {
	if err := validateMatrix(); err != nil {
		panic(err)
	}
}

// validateMatrix comprueba la completitud de la tabla en carga: deriva entre
// roles detectada al arrancar, no en producción.
func validateMatrix() error {
	for _, h := range Hierarchies() {
		g, ok := permissionMatrix[h]
		if !ok {
			return fmt.Errorf("matriz de permisos: falta entrada para jerarquía %q", h)
		}
		if g.All && len(g.Modules) > 0 {
			return fmt.Errorf("matriz de permisos: %q combina comodín con módulos explícitos", h)
		}
		for mod := range g.Modules {
			if _, known := knownModules[mod]; !known {
				return fmt.Errorf("matriz de permisos: %q referencia módulo desconocido %q", h, mod)
			}
		}
	}
	for h := range permissionMatrix {
		if !Known(h) {
			return fmt.Errorf("matriz de permisos: entrada para jerarquía no registrada %q", h)
		}
	}
	return nil
}

// GrantsFor resuelve las acciones permitidas a una jerarquía sobre un módulo.
// Orden de resolución: comodín → sub-registro del módulo → conjunto vacío.
// Denegar por defecto es el único default seguro.
func GrantsFor(hierarchyID, module string) ActionSet {
	g, ok := permissionMatrix[hierarchyID]
	if !ok {
		return ActionSet{}
	}
	if g.All {
		return newActionSet(AllActions...)
	}
	set, ok := g.Modules[module]
	if !ok {
		return ActionSet{}
	}
	return set
}

// CanPerformAction informa si la jerarquía puede ejecutar la acción sobre el
// módulo. Pura: solo consulta configuración, sin red ni base de datos.
func CanPerformAction(hierarchyID, module string, action Action) bool {
	return GrantsFor(hierarchyID, module).Has(action)
}
