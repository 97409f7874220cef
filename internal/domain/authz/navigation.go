package authz

// NavigationItem entrada del menú de la aplicación, ligada a un módulo.
type NavigationItem struct {
	Module  string `json:"module"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	Icon    string `json:"icon"`
	Order   int    `json:"order"`
	Visible bool   `json:"-"`
}

// navigationTable es la tabla estática de navegación, ya ordenada.
// Visible=false oculta la entrada sin retirar el módulo de la matriz
// (p. ej. módulos en despliegue gradual).
var navigationTable = []NavigationItem{
	{Module: ModulePacientes, Label: "Pacientes", Path: "/pacientes", Icon: "users", Order: 1, Visible: true},
	{Module: ModuleExamenes, Label: "Exámenes", Path: "/examenes", Icon: "clipboard", Order: 2, Visible: true},
	{Module: ModuleCitas, Label: "Citas", Path: "/citas", Icon: "calendar", Order: 3, Visible: true},
	{Module: ModuleFacturacion, Label: "Facturación", Path: "/facturacion", Icon: "receipt", Order: 4, Visible: true},
	{Module: ModuleReportes, Label: "Reportes", Path: "/reportes", Icon: "chart", Order: 5, Visible: true},
	{Module: ModuleUsuarios, Label: "Usuarios", Path: "/usuarios", Icon: "id-badge", Order: 6, Visible: true},
	{Module: ModuleEmpresas, Label: "Empresas", Path: "/empresas", Icon: "building", Order: 7, Visible: true},
	{Module: ModuleConfiguracion, Label: "Configuración", Path: "/configuracion", Icon: "gear", Order: 8, Visible: true},
}

// VisibleNavigation filtra la tabla estática por visibilidad y por permiso de
// lectura de la jerarquía sobre cada módulo. Devuelve las entradas en orden.
func VisibleNavigation(hierarchyID string) []NavigationItem {
	out := make([]NavigationItem, 0, len(navigationTable))
	for _, item := range navigationTable {
		if !item.Visible {
			continue
		}
		if !CanPerformAction(hierarchyID, item.Module, ActionRead) {
			continue
		}
		out = append(out, item)
	}
	return out
}
