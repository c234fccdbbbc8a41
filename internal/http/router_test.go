package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"ragbuilder/internal/chunker"
	internalhttp "ragbuilder/internal/http"
	"ragbuilder/internal/loader"
	"ragbuilder/internal/pipeline"
	"ragbuilder/internal/storage"
	"ragbuilder/internal/storage/mocks"
	"ragbuilder/internal/tokenizer"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	manifest := mocks.NewMockManifestStore(ctrl)
	manifest.EXPECT().
		Totals(gomock.Any()).
		Return(&storage.Totals{Documents: 1, Chunks: 10}, nil).
		AnyTimes()

	engine := chunker.New(tokenizer.NewHeuristic())
	ld := loader.New(chunker.Metadata{})
	return internalhttp.NewRouter(&internalhttp.Deps{
		Engine:         engine,
		Pipeline:       pipeline.New(ld, engine, manifest, nil, nil, ""),
		Manifest:       manifest,
		VectorStore:    nil,
		CollectionName: "chunks",
	})
}

func TestRouterRoutes(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "chunk",
			method:     http.MethodPost,
			path:       "/api/chunk",
			body:       `{"text": "Hello world."}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "stats",
			method:     http.MethodGet,
			path:       "/api/stats",
			wantStatus: http.StatusOK,
		},
		{
			name:       "health without vector store",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method on chunk",
			method:     http.MethodGet,
			path:       "/api/chunk",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d; body: %s",
					tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouterStatsPayload(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var totals storage.Totals
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatal(err)
	}
	if totals.Documents != 1 || totals.Chunks != 10 {
		t.Errorf("totals = %+v", totals)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chunk", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSHeadersOnResponse(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
