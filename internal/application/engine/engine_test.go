package engine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
	"github.com/medintegra/salud-ocupacional-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria del servicio de directorio
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	fail  error // si no es nil, toda operación falla con este error
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	m := make(map[string]*entity.User, len(users))
	for _, u := range users {
		cp := *u
		m[u.ID] = &cp
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListByEnterprise(_ context.Context, enterpriseID string, filter repository.ScopeFilter, _, _ int) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, u := range f.users {
		if enterpriseID != "" && u.EnterpriseID != enterpriseID {
			continue
		}
		if filter.DepartmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != filter.DepartmentID) {
			continue
		}
		if filter.ClinicID != "" && (u.ClinicID == nil || *u.ClinicID != filter.ClinicID) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	stored, ok := f.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConflict
	}
	cp := *user
	cp.Version = expectedVersion + 1
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ReportingEdges(_ context.Context, enterpriseID string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edges := make(map[string]string)
	for _, u := range f.users {
		if u.EnterpriseID == enterpriseID && u.ReportsTo != nil {
			edges[u.ID] = *u.ReportsTo
		}
	}
	return edges, nil
}

type fakeOrgRepo struct {
	units []entity.OrgUnit
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id string) (*entity.OrgUnit, error) {
	for _, u := range f.units {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}
func (f *fakeOrgRepo) Create(context.Context, *entity.OrgUnit) error { return nil }
func (f *fakeOrgRepo) Update(context.Context, *entity.OrgUnit) error { return nil }
func (f *fakeOrgRepo) Delete(context.Context, string) error          { return nil }
func (f *fakeOrgRepo) Snapshot(_ context.Context, enterpriseID string) ([]entity.OrgUnit, error) {
	if enterpriseID == "" {
		return f.units, nil
	}
	var out []entity.OrgUnit
	for _, u := range f.units {
		if u.EnterpriseID == enterpriseID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (f *fakeAuditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) ListByEnterprise(context.Context, string, repository.AuditFilter, int, int) ([]*entity.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, nil
}

func (f *fakeAuditRepo) denials() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if !e.Allowed {
			n++
		}
	}
	return n
}

type fakeTxRunner struct {
	users *fakeUserRepo
	audit *fakeAuditRepo
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(repository.UserRepository, repository.AuditRepository) error) error {
	return fn(f.users, f.audit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base: empresa E1 con departamento D1 y clínicas C1/C2
// ──────────────────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

type fixture struct {
	eng   *engine.Engine
	users *fakeUserRepo
	audit *fakeAuditRepo
}

func newFixture(t *testing.T, users ...*entity.User) *fixture {
	t.Helper()
	repo := newFakeUserRepo(users...)
	orgs := &fakeOrgRepo{units: []entity.OrgUnit{
		{ID: "E1", EnterpriseID: "E1", Kind: entity.UnitEnterprise, Name: "Minera Andina"},
		{ID: "D1", EnterpriseID: "E1", ParentID: strPtr("E1"), Kind: entity.UnitDepartment, Name: "Operaciones"},
		{ID: "C1", EnterpriseID: "E1", ParentID: strPtr("D1"), Kind: entity.UnitClinic, Name: "Clínica Norte"},
		{ID: "C2", EnterpriseID: "E1", ParentID: strPtr("D1"), Kind: entity.UnitClinic, Name: "Clínica Sur"},
		{ID: "E2", EnterpriseID: "E2", Kind: entity.UnitEnterprise, Name: "Textiles del Pacífico"},
	}}
	audit := &fakeAuditRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	eng := engine.New(repo, orgs, audit, &fakeTxRunner{users: repo, audit: audit}, log)
	return &fixture{eng: eng, users: repo, audit: audit}
}

func adminE1() *entity.User {
	return &entity.User{
		ID: "admin-1", EnterpriseID: "E1", Email: "admin@e1.co",
		Hierarchy: authz.HierarchyAdminEmpresa, Status: entity.StatusActive,
		DepartmentID: strPtr("D1"), Version: 1,
	}
}

func recepcionE1() *entity.User {
	return &entity.User{
		ID: "rec-1", EnterpriseID: "E1", Email: "rec@e1.co",
		Hierarchy: authz.HierarchyRecepcion, Status: entity.StatusActive,
		DepartmentID: strPtr("D1"), Version: 1,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Authorize
// ──────────────────────────────────────────────────────────────────────────────

// Escenario del contrato: admin_empresa de E1/D1 sobre usuario recepcion en
// E1/D1 → update sobre usuarios permitido.
func TestAuthorize_AdminActualizaUsuarios(t *testing.T) {
	f := newFixture(t, adminE1(), recepcionE1())
	err := f.eng.Authorize(context.Background(), "admin-1", authz.ModuleUsuarios, authz.ActionUpdate, "")
	assert.NoError(t, err)
}

func TestAuthorize_SinPermisoDeniegaConRegla(t *testing.T) {
	f := newFixture(t, recepcionE1())
	err := f.eng.Authorize(context.Background(), "rec-1", authz.ModuleUsuarios, authz.ActionUpdate, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 1, f.audit.denials(), "la denegación queda auditada con su regla")
}

func TestAuthorize_UnidadFueraDeAlcance(t *testing.T) {
	enfermera := &entity.User{
		ID: "enf-1", EnterpriseID: "E1", Hierarchy: authz.HierarchyEnfermera,
		Status: entity.StatusActive, DepartmentID: strPtr("D1"), ClinicID: strPtr("C1"), Version: 1,
	}
	f := newFixture(t, enfermera)

	// Acción permitida y unidad dentro de alcance.
	err := f.eng.Authorize(context.Background(), "enf-1", authz.ModulePacientes, authz.ActionRead, "C1")
	assert.NoError(t, err)

	// Acción permitida pero clínica hermana explícita → denegación por alcance.
	err = f.eng.Authorize(context.Background(), "enf-1", authz.ModulePacientes, authz.ActionRead, "C2")
	assert.ErrorIs(t, err, domain.ErrScopeViolation)
}

func TestAuthorize_PlataformaCruzaEmpresas(t *testing.T) {
	root := &entity.User{ID: "root", EnterpriseID: "E1", Hierarchy: authz.HierarchySuperAdmin, Status: entity.StatusActive, Version: 1}
	f := newFixture(t, root)
	err := f.eng.Authorize(context.Background(), "root", authz.ModuleEmpresas, authz.ActionRead, "E2")
	assert.NoError(t, err, "la jerarquía de plataforma está exenta de la partición por empresa")
}

// Un fallo del directorio se propaga como denegación con su causa, nunca como
// permiso implícito.
func TestAuthorize_DirectorioCaidoNoAbrePermisos(t *testing.T) {
	f := newFixture(t, adminE1())
	f.users.fail = fmt.Errorf("%w: timeout", domain.ErrDirectoryUnavailable)

	err := f.eng.Authorize(context.Background(), "admin-1", authz.ModuleUsuarios, authz.ActionRead, "")
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
}

func TestAuthorize_ActorInactivo(t *testing.T) {
	inactivo := adminE1()
	inactivo.Status = entity.StatusInactive
	f := newFixture(t, inactivo)
	err := f.eng.Authorize(context.Background(), "admin-1", authz.ModuleUsuarios, authz.ActionRead, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// VisibleNavigation / ResolveListFilter
// ──────────────────────────────────────────────────────────────────────────────

func TestVisibleNavigation_PorActor(t *testing.T) {
	f := newFixture(t, adminE1(), recepcionE1())

	items, err := f.eng.VisibleNavigation(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Len(t, items, 8, "admin_empresa lee todos los módulos")

	items, err = f.eng.VisibleNavigation(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// Escenario del contrato: actor de C1 lista filtrando por C2 (clínica hermana)
// → intersección vacía, no error.
func TestResolveListFilter_ClinicaHermanaDaVacio(t *testing.T) {
	enfermera := &entity.User{
		ID: "enf-1", EnterpriseID: "E1", Hierarchy: authz.HierarchyEnfermera,
		Status: entity.StatusActive, DepartmentID: strPtr("D1"), ClinicID: strPtr("C1"), Version: 1,
	}
	f := newFixture(t, enfermera)
	_, scope, tree, err := f.eng.VisibleScope(context.Background(), "enf-1")
	require.NoError(t, err)

	filter, empty := engine.ResolveListFilter(scope, tree, repository.ScopeFilter{ClinicID: "C2"})
	assert.True(t, empty, "la intersección con la clínica hermana es vacía, sin error")
	assert.Zero(t, filter)

	filter, empty = engine.ResolveListFilter(scope, tree, repository.ScopeFilter{})
	assert.False(t, empty)
	assert.Equal(t, "C1", filter.ClinicID, "sin filtro explícito se aplica el alcance propio")
}

func TestResolveListFilter_DepartamentoIntersectaClinica(t *testing.T) {
	jefe := &entity.User{
		ID: "med-1", EnterpriseID: "E1", Hierarchy: authz.HierarchyMedicoTrabajo,
		Status: entity.StatusActive, DepartmentID: strPtr("D1"), Version: 1,
	}
	f := newFixture(t, jefe)
	_, scope, tree, err := f.eng.VisibleScope(context.Background(), "med-1")
	require.NoError(t, err)

	// Clínica del propio departamento: se respeta el filtro pedido.
	filter, empty := engine.ResolveListFilter(scope, tree, repository.ScopeFilter{ClinicID: "C2"})
	assert.False(t, empty)
	assert.Equal(t, "C2", filter.ClinicID)

	// Sin filtro: todo el departamento.
	filter, empty = engine.ResolveListFilter(scope, tree, repository.ScopeFilter{})
	assert.False(t, empty)
	assert.Equal(t, "D1", filter.DepartmentID)
}

func TestResolveListFilter_PacienteSinAlcance(t *testing.T) {
	paciente := &entity.User{ID: "pac-1", EnterpriseID: "E1", Hierarchy: authz.HierarchyPaciente, Status: entity.StatusActive, Version: 1}
	f := newFixture(t, paciente)
	_, scope, tree, err := f.eng.VisibleScope(context.Background(), "pac-1")
	require.NoError(t, err)

	_, empty := engine.ResolveListFilter(scope, tree, repository.ScopeFilter{})
	assert.True(t, empty, "paciente: solo registro propio, los listados son vacíos")
}
