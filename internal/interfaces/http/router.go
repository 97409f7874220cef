package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *engine.Engine
	UserUC    *usecase.UserUseCase
	OrgUC     *usecase.OrgUseCase
	PatientUC *usecase.PatientUseCase
	InvoiceUC *usecase.InvoiceUseCase
	AuditUC   *usecase.AuditUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas exigen Bearer Token; el
// motor decide permisos y alcance contra el directorio en cada petición.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Navegación visible
	navHandler := NewNavigationHandler(deps.Engine)
	api.Get("/navegacion", navHandler.Visible)

	// Usuarios (directorio)
	users := api.Group("/usuarios")
	userHandler := NewUserHandler(deps.UserUC, deps.Engine)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Patch("/:id/estado", userHandler.PatchGuarded)
	users.Put("/:id/jefe", userHandler.AssignManager)
	users.Delete("/:id", userHandler.Delete)

	// Árbol organizacional
	org := api.Group("/organizacion")
	orgHandler := NewOrgHandler(deps.OrgUC)
	org.Get("/arbol", orgHandler.Tree)
	org.Post("/unidades", orgHandler.CreateUnit)
	org.Get("/unidades/:id", orgHandler.GetUnit)
	org.Put("/unidades/:id", orgHandler.RenameUnit)

	// Pacientes
	patients := api.Group("/pacientes")
	patientHandler := NewPatientHandler(deps.PatientUC)
	patients.Post("/", patientHandler.Create)
	patients.Get("/", patientHandler.List)
	patients.Get("/me", patientHandler.Me)
	patients.Get("/export",
		RequirePermission(authz.ModulePacientes, authz.ActionExport, deps.Engine),
		patientHandler.Export)
	patients.Get("/:id", patientHandler.GetByID)

	// Facturación
	invoices := api.Group("/facturas")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/emitir", invoiceHandler.Issue)

	// Auditoría (configuración)
	auditHandler := NewAuditHandler(deps.AuditUC)
	api.Get("/auditoria", auditHandler.List)
}
