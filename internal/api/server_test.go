package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/makhin/gedsync/internal/config"
	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	opener := func(path string) (store.ConfirmedMappingsStore, error) {
		return store.NewMemoryStore("source.ged", "dest.ged"), nil
	}
	return NewServer(cfg, opener)
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleCompare_MissingPaths(t *testing.T) {
	s := testServer(t)
	body := `{"anchorSourceId":"00000000-0000-0000-0000-000000000001","anchorDestId":"00000000-0000-0000-0000-000000000002"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d. body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestHandleCompare_SourceFileNotFound(t *testing.T) {
	s := testServer(t)
	body := `{"sourcePath":"/no/such/file.ged","destPath":"/no/such/file2.ged","anchorSourceId":"00000000-0000-0000-0000-000000000001","anchorDestId":"00000000-0000-0000-0000-000000000002"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d. body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestOpenAPISpecValidity(t *testing.T) {
	spec := mustLoadSpec()
	if spec.doc.Info.Title != "Wave Compare Engine API" {
		t.Errorf("unexpected spec title: %s", spec.doc.Info.Title)
	}
	if len(spec.doc.Paths.Map()) == 0 {
		t.Error("spec has no paths")
	}
}

func TestOptionsOverride_Apply(t *testing.T) {
	base := domain.DefaultCompareOptions()
	maxLevel := 3
	strategy := "fixed"
	override := &optionsOverride{MaxLevel: &maxLevel, ThresholdStrategy: &strategy}

	got := override.apply(base)
	if got.MaxLevel != 3 {
		t.Errorf("MaxLevel = %d, want 3", got.MaxLevel)
	}
	if got.ThresholdStrategy != domain.StrategyFixed {
		t.Errorf("ThresholdStrategy = %s, want fixed", got.ThresholdStrategy)
	}
	if got.BaseThreshold != base.BaseThreshold {
		t.Errorf("BaseThreshold should be unchanged, got %d", got.BaseThreshold)
	}
}

func TestOptionsOverride_ApplyNil(t *testing.T) {
	base := domain.DefaultCompareOptions()
	var override *optionsOverride
	if got := override.apply(base); got != base {
		t.Errorf("nil override should return base unchanged, got %+v", got)
	}
}

func TestDocsRoutes(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/openapi.yaml", http.NoBody)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("openapi.yaml status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/docs", http.NoBody)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("docs status = %d", rec.Code)
	}
}
