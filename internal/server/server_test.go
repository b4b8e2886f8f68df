package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orgregistry/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Token:      config.TokenConfig{Secret: "test-secret", Algorithm: "HS256", ExpMinutes: 5, Issuer: "test"},
		StoreType:  config.StoreMemory,
		BcryptCost: bcrypt.MinCost,
	}
	srv, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestLifecycleOverHTTP(t *testing.T) {
	h := newTestServer(t).Handler()

	code, body := do(t, h, http.MethodPost, "/org/create",
		`{"organization_name":"Acme Corp","email":"admin@acme.io","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "org_acme_corp", body["collection_name"])
	orgID := body["id"].(string)

	code, _ = do(t, h, http.MethodPost, "/org/create",
		`{"organization_name":"acme_corp","email":"x@acme.io","password":"s3cret"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, h, http.MethodGet, "/org/Acme%20Corp", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, orgID, body["id"])

	code, body = do(t, h, http.MethodPost, "/admin/login", `{"email":"admin@acme.io","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bearer", body["token_type"])
	token := body["access_token"].(string)

	code, body = do(t, h, http.MethodGet, "/admin/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, orgID, body["org_id"])
	assert.Equal(t, "Acme Corp", body["org_name"])

	code, body = do(t, h, http.MethodPut, "/org/Acme%20Corp", `{"organization_name":"Acme Labs"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "org_acme_labs", body["collection_name"])

	code, _ = do(t, h, http.MethodGet, "/org/Acme%20Corp", "")
	assert.Equal(t, http.StatusNotFound, code)

	// Tokens keep the name they were issued with; the lookup is by id.
	code, body = do(t, h, http.MethodGet, "/admin/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Acme Corp", body["org_name"])
	assert.Equal(t, "Acme Labs", body["organization"].(map[string]any)["organization_name"])

	code, body = do(t, h, http.MethodDelete, "/org/Acme%20Labs", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Organization deleted successfully", body["detail"])

	code, _ = do(t, h, http.MethodDelete, "/org/Acme%20Labs", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/admin/login", `{"email":"admin@acme.io","password":"s3cret"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, h, http.MethodGet, "/admin/me", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOperationalRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	code, body := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = do(t, h, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["version"])

	code, _ = do(t, h, http.MethodGet, "/admin/me", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orgregistry_http_requests_total")
}

func TestInitRepositoriesUnknownStore(t *testing.T) {
	_, _, err := InitRepositories(context.Background(), &config.Config{StoreType: "redis"})
	require.Error(t, err)
}

func TestInitServicesRejectsBadAlgorithm(t *testing.T) {
	cfg := &config.Config{Token: config.TokenConfig{Secret: "s", Algorithm: "RS256"}}
	_, err := InitServices(cfg, nil, nil)
	require.Error(t, err)
}
