package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orgregistry/internal/auth"
	"orgregistry/internal/model"
	"orgregistry/internal/repository"
	"orgregistry/internal/service"
	"orgregistry/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenOrgs fails every lookup the way an unreachable database would.
type brokenOrgs struct {
	repository.IOrgRepository
}

func (brokenOrgs) FindByName(context.Context, string) (*model.Organization, error) {
	return nil, errors.New("server selection timeout")
}

type brokenPinger struct{}

func (brokenPinger) Ping(context.Context) error { return errors.New("no primary") }

func newRouter(t *testing.T, store *repository.Store) *gin.Engine {
	t.Helper()
	issuer, err := auth.NewIssuer("secret", "HS256", "test")
	require.NoError(t, err)
	hasher := util.NewBcryptHasher(bcrypt.MinCost)

	registry := service.NewOrgService(store, hasher)
	orgs := NewOrgHandler(registry)
	login := NewAuthHandler(service.NewAuthService(store, hasher, issuer, time.Hour), registry)

	r := gin.New()
	r.POST("/org/create", orgs.Create)
	r.GET("/org/:name", orgs.Get)
	r.PUT("/org/:name", orgs.Update)
	r.DELETE("/org/:name", orgs.Delete)
	r.POST("/admin/login", login.Login)
	r.GET("/admin/me", login.Me)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusMapping(t *testing.T) {
	r := newRouter(t, repository.NewMemoryStore())

	w := serve(r, http.MethodPost, "/org/create", `{"organization_name":"Acme","email":"a@acme.io","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(r, http.MethodPost, "/org/create", `{"organization_name":"Beta","email":"b@beta.io","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		error  string
	}{
		{"create duplicate", http.MethodPost, "/org/create", `{"organization_name":"Acme","email":"a@acme.io","password":"pw"}`, http.StatusBadRequest, service.ErrAlreadyExists.Error()},
		{"create short name", http.MethodPost, "/org/create", `{"organization_name":"Ab","email":"a@acme.io","password":"pw"}`, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{"create dollar name", http.MethodPost, "/org/create", `{"organization_name":"Acme$Corp","email":"a@acme.io","password":"pw"}`, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{"create missing field", http.MethodPost, "/org/create", `{"organization_name":"Gamma"}`, http.StatusBadRequest, "Invalid request body"},
		{"create malformed", http.MethodPost, "/org/create", `{`, http.StatusBadRequest, "Invalid request body"},
		{"get missing", http.MethodGet, "/org/Nope", "", http.StatusNotFound, service.ErrNotFound.Error()},
		{"update missing", http.MethodPut, "/org/Nope", `{"admin_email":"x@y.io"}`, http.StatusNotFound, service.ErrNotFound.Error()},
		{"update conflict", http.MethodPut, "/org/Acme", `{"organization_name":"Beta"}`, http.StatusNotFound, service.ErrNameConflict.Error()},
		{"update invalid", http.MethodPut, "/org/Acme", `{"admin_email":"nope"}`, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{"delete missing", http.MethodDelete, "/org/Nope", "", http.StatusNotFound, service.ErrNotFound.Error()},
		{"login wrong password", http.MethodPost, "/admin/login", `{"email":"a@acme.io","password":"bad"}`, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{"login missing field", http.MethodPost, "/admin/login", `{"email":"a@acme.io"}`, http.StatusBadRequest, "Invalid request body"},
		{"me without middleware", http.MethodGet, "/admin/me", "", http.StatusUnauthorized, "Missing bearer token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.error, resp.Error)
		})
	}
}

func TestCreateResponseShape(t *testing.T) {
	r := newRouter(t, repository.NewMemoryStore())

	w := serve(r, http.MethodPost, "/org/create", `{"organization_name":"Acme Corp","email":"a@acme.io","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.OrganizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.ID, 24)
	assert.Len(t, resp.AdminID, 24)
	assert.Equal(t, "Acme Corp", resp.OrganizationName)
	assert.Equal(t, "org_acme_corp", resp.CollectionName)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUnexpectedErrorsAreOpaque(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Orgs = brokenOrgs{IOrgRepository: store.Orgs}
	r := newRouter(t, store)

	w := serve(r, http.MethodGet, "/org/Acme", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "server selection")

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestHealthz(t *testing.T) {
	r := gin.New()
	r.GET("/ok", NewHealthHandler(repository.NewMemoryStore()).Healthz)
	r.GET("/down", NewHealthHandler(brokenPinger{}).Healthz)
	r.GET("/version", NewHealthHandler(brokenPinger{}).Version)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/down", "").Code)

	w := serve(r, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"goVersion"`)
}
