package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	apphttp "github.com/medintegra/salud-ocupacional-api/internal/interfaces/http"
	pkgjwt "github.com/medintegra/salud-ocupacional-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret    = "test-secret-key-for-unit-tests"
	testUserID       = "00000000-0000-0000-0000-000000000001"
	testEnterpriseID = "00000000-0000-0000-0000-000000000002"
	testIssuer       = "salud-ocupacional-test"
	testExpMin       = 60
)

// stubAuthorizer decide con una tabla fija actor → error, sin directorio real.
type stubAuthorizer struct {
	decisions map[string]error
}

func (s *stubAuthorizer) Authorize(_ context.Context, actorID, _ string, _ authz.Action, _ string) error {
	return s.decisions[actorID]
}

// buildTestApp construye una aplicación Fiber mínima con AuthMiddleware,
// RequirePermission y un handler dummy que devuelve 200 si pasa.
func buildTestApp(auth *stubAuthorizer) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(authz.ModulePacientes, authz.ActionRead, auth),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":        true,
				"hierarchy": apphttp.GetHierarchy(c),
			})
		},
	)
	return app
}

// tokenForHierarchy genera un JWT con la jerarquía indicada.
func tokenForHierarchy(t *testing.T, hierarchy string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEnterpriseID, hierarchy, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el motor permite → HTTP 200.
func TestRequirePermission_Permitido(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{}})
	resp := doRequest(t, app, tokenForHierarchy(t, authz.HierarchyEnfermera))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, authz.HierarchyEnfermera, body["hierarchy"])
}

// Caso 2: denegación por permiso → 403 con el código de la regla.
func TestRequirePermission_DenegadoPorPermiso(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{
		testUserID: fmt.Errorf("%w: bot no tiene read sobre pacientes", domain.ErrForbidden),
	}})
	resp := doRequest(t, app, tokenForHierarchy(t, authz.HierarchyBot))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Caso 3: denegación por alcance → 403 SCOPE_VIOLATION, no un forbidden genérico.
func TestRequirePermission_DenegadoPorAlcance(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{
		testUserID: fmt.Errorf("%w: clínica hermana", domain.ErrScopeViolation),
	}})
	resp := doRequest(t, app, tokenForHierarchy(t, authz.HierarchyEnfermera))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "SCOPE_VIOLATION")
}

// Caso 4: directorio caído → 503, nunca se deja pasar.
func TestRequirePermission_DirectorioCaido(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{
		testUserID: fmt.Errorf("%w: timeout", domain.ErrDirectoryUnavailable),
	}})
	resp := doRequest(t, app, tokenForHierarchy(t, authz.HierarchyAdminEmpresa))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "DIRECTORY_UNAVAILABLE")
}

// Caso 5: sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestRequirePermission_SinAuthHeader(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{}})
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 6: token inválido / malformado → HTTP 401.
func TestRequirePermission_TokenInvalido(t *testing.T) {
	app := buildTestApp(&stubAuthorizer{decisions: map[string]error{}})
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":       apphttp.GetUserID(c),
			"enterprise_id": apphttp.GetEnterpriseID(c),
			"hierarchy":     apphttp.GetHierarchy(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForHierarchy(t, authz.HierarchyMedicoTrabajo))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testEnterpriseID, body["enterprise_id"])
	assert.Equal(t, authz.HierarchyMedicoTrabajo, body["hierarchy"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse con jerarquía
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEnterpriseID, authz.HierarchyRecepcion, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, enterpriseID, hierarchy, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testEnterpriseID, enterpriseID)
	assert.Equal(t, authz.HierarchyRecepcion, hierarchy)
}

func TestJWT_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEnterpriseID, authz.HierarchyAdminEmpresa, testIssuer, -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEnterpriseID, authz.HierarchyAdminEmpresa, testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
