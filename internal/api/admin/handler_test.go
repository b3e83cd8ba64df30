package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitewise-ai/sitewise/internal/api/middleware"
	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/repository"
	"github.com/sitewise-ai/sitewise/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://chat.example.com"
	cfg.Ingest.MaxSources = 5
	cfg.Ingest.MaxContentLen = 20000

	widgetRepo := repository.NewWidgetRepository(db)
	contentRepo := repository.NewContentRepository(db)
	adminService := service.NewAdminService(cfg, widgetRepo, contentRepo)
	ingestService := service.NewIngestService(cfg, contentRepo, zap.NewNop())

	h := NewHandler(adminService, ingestService)
	r := gin.New()
	group := r.Group("/api/admin")
	group.Use(middleware.Auth(testAPIKey))
	h.RegisterRoutes(group)
	return r
}

func doRequest(r *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createWidget(t *testing.T, r *gin.Engine, body string) domain.Widget {
	t.Helper()
	rec := doRequest(r, http.MethodPost, "/api/admin/widgets", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var w domain.Widget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	return w
}

func TestAdminRequiresAPIKey(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/api/admin/widgets", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAcceptsBearerToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/widgets", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateWidgetFillsDefaults(t *testing.T) {
	r := newTestRouter(t)

	w := createWidget(t, r, `{"name":"Support","widget_template":"carousel"}`)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "Chat Assistant", w.HeaderTitle)
	assert.Equal(t, "bubble", w.WidgetTemplate, "unknown template normalized")
	assert.Equal(t, "bottom-right", w.Position)
}

func TestCreateWidgetRequiresName(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/admin/widgets", `{"header_title":"x"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWidgetCRUDFlow(t *testing.T) {
	r := newTestRouter(t)

	w := createWidget(t, r, `{"name":"Support","allowed_origins":["https://acme.example.com"]}`)

	rec := doRequest(r, http.MethodGet, "/api/admin/widgets/"+w.ID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodPut, "/api/admin/widgets/"+w.ID,
		`{"header_title":"Sales Desk","widget_template":"panel"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Widget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Sales Desk", updated.HeaderTitle)
	assert.Equal(t, "panel", updated.WidgetTemplate)
	assert.Equal(t, "Support", updated.Name, "unset fields untouched")
	assert.Equal(t, []string{"https://acme.example.com"}, updated.AllowedOrigins)

	rec = doRequest(r, http.MethodDelete, "/api/admin/widgets/"+w.ID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/admin/widgets/"+w.ID, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMissingWidgetReturns404(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodPut, "/api/admin/widgets/ghost", `{"name":"x"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmbedSnippetEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := createWidget(t, r, `{"name":"Support"}`)

	rec := doRequest(r, http.MethodGet, "/api/admin/widgets/"+w.ID+"/embed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snippet string `json:"snippet"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Snippet, "<script src=")
	assert.Contains(t, body.Snippet, "https://chat.example.com/widget.js?id="+w.ID)

	rec = doRequest(r, http.MethodGet, "/api/admin/widgets/ghost/embed", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddURLSourceValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/admin/sources", `{"url":"ftp://example.com"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	createWidget(t, r, `{"name":"Support"}`)

	rec := doRequest(r, http.MethodGet, "/api/admin/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalWidgets)
	assert.Zero(t, stats.TotalSources)
}
