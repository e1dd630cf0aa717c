package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhenzou/executors"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/authz/exprscript"
	"github.com/recordhub/recordhub/internal/files"
	"github.com/recordhub/recordhub/internal/jobs"
	"github.com/recordhub/recordhub/internal/metadata"
	"github.com/recordhub/recordhub/internal/records"
	"github.com/recordhub/recordhub/internal/repository"
	"github.com/recordhub/recordhub/internal/server/api"
	"github.com/recordhub/recordhub/internal/server/middleware"
	"github.com/recordhub/recordhub/internal/store/memstore"
	"github.com/recordhub/recordhub/internal/tools"
)

const testSecret = "api-test-secret"

type fixture struct {
	router   *gin.Engine
	tenantID uuid.UUID
	userID   uuid.UUID
	jobs     *jobs.Service
	repo     repository.Tenantable[*records.Record]
}

type fixtureConfig struct {
	tenantScript       string
	entityScript       string
	stateAllowedScript string
}

func setupFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}

	provider, err := metadata.NewStaticProvider([]metadata.TenantConfig{
		{
			ID:                f.tenantID.String(),
			Name:              "acme",
			RightsCheckScript: cfg.tenantScript,
			Entities: []metadata.EntityConfig{
				{
					Application:        "records",
					Entity:             "document",
					RightsCheckScript:  cfg.entityScript,
					StateAllowedScript: cfg.stateAllowedScript,
				},
			},
		},
	})
	require.NoError(t, err)

	engine := exprscript.NewEngine()
	gate := authz.NewGate(authz.GateParams{
		Metadata: provider,
		Tenants:  authz.NewTenantRightsChecker(authz.TenantRightsCheckerParams{Engine: engine}),
		Entities: authz.NewEntityRightsChecker(authz.EntityRightsCheckerParams{Engine: engine}),
	})

	repo := records.NewRepository(memstore.New(records.CloneStored))
	f.repo = repo
	f.jobs = jobs.NewService(jobs.Params{Store: memstore.New(jobs.CloneJob)})

	fileStore := files.NewStoreWithFs(afero.NewMemMapFs())

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register("document", tools.Entry{
		Application: "records",
		Entity:      "document",
		Importer:    repo,
	}))
	registry.Freeze()

	executor := executors.NewPoolScheduleExecutor(executors.WithMaxConcurrent(1))
	t.Cleanup(func() {
		_ = executor.Shutdown(context.Background())
	})

	importer := jobs.NewImporter(jobs.ImporterParams{
		Jobs:         f.jobs,
		Files:        fileStore,
		Registry:     registry,
		Metadata:     provider,
		TenantRights: authz.NewTenantRightsChecker(authz.TenantRightsCheckerParams{Engine: engine}),
		Executor:     executor,
	})

	endpoints := api.NewEntityEndpoints(api.EntityConfig[*records.Record]{
		Application: "records",
		Entity:      "document",
		Gate:        gate,
		Repo:        f.repo,
		Files:       fileStore,
		Importer:    importer,
		ParamOf: func(value *records.Record) any {
			return value.Fields
		},
		ExportExpiration: time.Minute,
	})

	jobHandlers := api.NewJobHandlers(api.JobHandlersParams{Jobs: f.jobs})
	toolHandlers := api.NewToolHandlers(api.ToolHandlersParams{Registry: registry})

	f.router = gin.New()
	group := f.router.Group("/api", middleware.WithJWTAuth(middleware.AuthConfig{Secret: testSecret}))
	endpoints.RegisterRoutes(group)
	jobHandlers.RegisterRoutes(group)
	toolHandlers.RegisterRoutes(group)

	return f
}

func (f *fixture) token(t *testing.T, tenantID uuid.UUID, extra map[string]any) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":    f.userID.String(),
		"tenant": tenantID.String(),
	}
	for key, value := range extra {
		claims[key] = value
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	return f.do(t, method, path, token, body, "application/json")
}

func TestEntityCRUD(t *testing.T) {
	f := setupFixture(t, fixtureConfig{})
	token := f.token(t, f.tenantID, nil)

	record := &records.Record{
		ID:     uuid.New(),
		Fields: map[string]any{"name": "quarterly report", "state": "draft"},
	}

	t.Run("save", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodPost, "/api/records/document/save", token, record)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("byid", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/byid/"+record.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var fetched records.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
		assert.Equal(t, "quarterly report", fetched.Fields["name"])
	})

	t.Run("all", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/all", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var values []records.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
		require.Len(t, values, 1)
	})

	t.Run("count", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/count", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	})

	t.Run("query by id", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/query/primary?id="+record.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var values []records.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
		require.Len(t, values, 1)
	})

	t.Run("new produces fresh id", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/new", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var value records.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
		assert.NotEqual(t, uuid.Nil, value.ID)
		assert.NotEqual(t, record.ID, value.ID)
	})

	t.Run("savebatch", func(t *testing.T) {
		batch := []*records.Record{
			{ID: uuid.New(), Fields: map[string]any{"name": "a"}},
			{ID: uuid.New(), Fields: map[string]any{"name": "b"}},
		}

		rec := f.doJSON(t, http.MethodPost, "/api/records/document/savebatch", token, batch)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		count := f.doJSON(t, http.MethodGet, "/api/records/document/count", token, nil)
		assert.JSONEq(t, `{"count":3}`, count.Body.String())
	})

	t.Run("remove", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodDelete, "/api/records/document/remove/"+record.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		lookup := f.doJSON(t, http.MethodGet, "/api/records/document/byid/"+record.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, lookup.Code)
	})

	t.Run("byid with malformed id", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/byid/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEntityAuthorization(t *testing.T) {
	t.Run("unknown tenant is not found", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{})
		token := f.token(t, uuid.New(), nil)

		rec := f.doJSON(t, http.MethodGet, "/api/records/document/all", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("tenant denial is forbidden", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{tenantScript: "false"})
		token := f.token(t, f.tenantID, nil)

		rec := f.doJSON(t, http.MethodGet, "/api/records/document/all", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("named query needs its own right", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{
			tenantScript: `right == "records.document.view" || right == "records.document.archive"`,
		})
		token := f.token(t, f.tenantID, nil)

		allowed := f.doJSON(t, http.MethodGet, "/api/records/document/query/archive", token, nil)
		assert.Equal(t, http.StatusOK, allowed.Code)

		denied := f.doJSON(t, http.MethodGet, "/api/records/document/query/restricted", token, nil)
		assert.Equal(t, http.StatusForbidden, denied.Code)
	})

	t.Run("entity script narrows save", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{
			entityScript: `result && param.state != "locked"`,
		})
		token := f.token(t, f.tenantID, nil)

		open := &records.Record{ID: uuid.New(), Fields: map[string]any{"state": "draft"}}
		rec := f.doJSON(t, http.MethodPost, "/api/records/document/save", token, open)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		locked := &records.Record{ID: uuid.New(), Fields: map[string]any{"state": "locked"}}
		rec = f.doJSON(t, http.MethodPost, "/api/records/document/save", token, locked)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("batch denial blocks all saves", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{
			entityScript: `result && param.state != "locked"`,
		})
		token := f.token(t, f.tenantID, nil)

		batch := []*records.Record{
			{ID: uuid.New(), Fields: map[string]any{"state": "draft"}},
			{ID: uuid.New(), Fields: map[string]any{"state": "locked"}},
		}

		rec := f.doJSON(t, http.MethodPost, "/api/records/document/savebatch", token, batch)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		count := f.doJSON(t, http.MethodGet, "/api/records/document/count", token, nil)
		assert.JSONEq(t, `{"count":0}`, count.Body.String())
	})

	t.Run("claims feed tenant scripts", func(t *testing.T) {
		f := setupFixture(t, fixtureConfig{
			tenantScript: `"admin" in userinfo.roles`,
		})

		admin := f.token(t, f.tenantID, map[string]any{"roles": []string{"admin"}})
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/all", admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		viewer := f.token(t, f.tenantID, map[string]any{"roles": []string{"viewer"}})
		rec = f.doJSON(t, http.MethodGet, "/api/records/document/all", viewer, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestEntityImport(t *testing.T) {
	f := setupFixture(t, fixtureConfig{})
	token := f.token(t, f.tenantID, nil)

	payload := fmt.Sprintf(`[{"id":%q,"fields":{"name":"imported"}}]`, uuid.NewString())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "documents.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := f.do(t, http.MethodPost, "/api/records/document/import/importjson", token, &buf, writer.FormDataContentType())
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var response struct {
		JobID uuid.UUID `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	require.Eventually(t, func() bool {
		status := f.doJSON(t, http.MethodGet, "/api/jobs/byid/"+response.JobID.String(), token, nil)
		if status.Code != http.StatusOK {
			return false
		}

		var job jobs.Job
		if err := json.Unmarshal(status.Body.Bytes(), &job); err != nil {
			return false
		}

		return job.State == jobs.StateFinished
	}, 5*time.Second, 10*time.Millisecond)

	count := f.doJSON(t, http.MethodGet, "/api/records/document/count", token, nil)
	assert.JSONEq(t, `{"count":1}`, count.Body.String())
}

func TestEntityExport(t *testing.T) {
	f := setupFixture(t, fixtureConfig{})
	token := f.token(t, f.tenantID, nil)

	record := &records.Record{ID: uuid.New(), Fields: map[string]any{"name": "exported"}}
	save := f.doJSON(t, http.MethodPost, "/api/records/document/save", token, record)
	require.Equal(t, http.StatusOK, save.Code)

	t.Run("direct export", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/export/exportjson", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "exportjson.json")
		assert.Contains(t, rec.Body.String(), "exported")
	})

	t.Run("export url then download", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/exporturl/exportjson", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var response struct {
			ID  uuid.UUID `json:"id"`
			URL string    `json:"url"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Contains(t, response.URL, response.ID.String())

		download := f.doJSON(t, http.MethodGet, "/api/records/document/download/"+response.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, download.Code)
		assert.Contains(t, download.Body.String(), "exported")
	})

	t.Run("unknown download id", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/records/document/download/"+uuid.NewString(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestToolDiscovery(t *testing.T) {
	f := setupFixture(t, fixtureConfig{})
	token := f.token(t, f.tenantID, nil)

	t.Run("list registered tools", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/tools/all", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var response struct {
			Tools []struct {
				Name        string `json:"name"`
				Application string `json:"application"`
				Entity      string `json:"entity"`
			} `json:"tools"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Len(t, response.Tools, 1)
		assert.Equal(t, "document", response.Tools[0].Name)
		assert.Equal(t, "records", response.Tools[0].Application)
	})

	t.Run("lookup by name", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/tools/byname/document", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "records")
	})

	t.Run("unknown tool", func(t *testing.T) {
		rec := f.doJSON(t, http.MethodGet, "/api/tools/byname/missing", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
