package gateway

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"floorplanner/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorded struct {
	method      string
	path        string
	query       string
	contentType string
	body        string
}

func upstream(t *testing.T, name string, seen *[]recorded) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*seen = append(*seen, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			body:        string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", name)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"from":"` + name + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupGateway(t *testing.T, plannerURL, rendererURL string) *fiber.App {
	t.Helper()
	app := fiber.New()
	p := proxy.New("/api/v1", 5*time.Second, zap.NewNop())
	Register(app.Group("/api/v1"), p, plannerURL, rendererURL)
	return app
}

func TestGateway_RoutesToServices(t *testing.T) {
	var plannerSeen, rendererSeen []recorded
	planner := upstream(t, "planner", &plannerSeen)
	renderer := upstream(t, "renderer", &rendererSeen)
	app := setupGateway(t, planner.URL, renderer.URL)

	tests := []struct {
		method   string
		path     string
		upstream string
		wantPath string
	}{
		{http.MethodGet, "/api/v1/templates", "planner", "/templates"},
		{http.MethodPost, "/api/v1/canvases", "planner", "/canvases"},
		{http.MethodPost, "/api/v1/canvases/c1/pointer/move", "planner", "/canvases/c1/pointer/move"},
		{http.MethodDelete, "/api/v1/layouts/l1", "planner", "/layouts/l1"},
		{http.MethodPost, "/api/v1/render/pdf", "renderer", "/render/pdf"},
		{http.MethodPost, "/api/v1/import/svg", "renderer", "/import/svg"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(`{"x":1}`)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, tt.upstream, resp.Header.Get("X-Upstream"))

			seen := plannerSeen
			if tt.upstream == "renderer" {
				seen = rendererSeen
			}
			require.NotEmpty(t, seen)
			last := seen[len(seen)-1]
			assert.Equal(t, tt.method, last.method)
			assert.Equal(t, tt.wantPath, last.path)
		})
	}
}

func TestGateway_ForwardsBodyAndQuery(t *testing.T) {
	var seen []recorded
	planner := upstream(t, "planner", &seen)
	app := setupGateway(t, planner.URL, planner.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/canvases/c1/lock?force=1", bytes.NewReader([]byte(`{"locked":true}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.JSONEq(t, `{"from":"planner"}`, string(body))
	require.Len(t, seen, 1)
	assert.Equal(t, "force=1", seen[0].query)
	assert.Equal(t, `{"locked":true}`, seen[0].body)
	assert.Equal(t, "application/json", seen[0].contentType)
}

func TestGateway_ForwardsMultipart(t *testing.T) {
	var seen []recorded
	renderer := upstream(t, "renderer", &seen)
	app := setupGateway(t, renderer.URL, renderer.URL)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "plan.svg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("<svg/>"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/svg", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, seen, 1)
	assert.Equal(t, writer.FormDataContentType(), seen[0].contentType)
	assert.Contains(t, seen[0].body, `filename="plan.svg"`)
	assert.Contains(t, seen[0].body, "<svg/>")
}

func TestGateway_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	app := setupGateway(t, url, url)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
