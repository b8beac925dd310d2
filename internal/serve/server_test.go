package serve

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-caetano/how-much/internal/annotate"
	"github.com/vincent-caetano/how-much/pkg/db"
)

const shopPage = `<html><head><title>Deals</title></head><body><p>Only $100 today</p></body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	deps, store := annotate.NewDeps(database, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	srv := httptest.NewServer(NewServer(deps, store).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestAnnotateBody(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/annotate", shopPage)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "1", resp.Header.Get("X-Timecost-Annotated"))
	assert.Contains(t, body, "1d6h")

	resp, body = do(t, http.MethodPost, srv.URL+"/annotate?format=markdown&mode=compact", shopPage)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "1d6h")
	assert.NotContains(t, body, "$100")

	resp, body = do(t, http.MethodPost, srv.URL+"/annotate?format=report", shopPage)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "total_prices: 1")
}

func TestAnnotateBody_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/annotate", "  ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/annotate?mode=wide", shopPage)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/annotate?origin=https://blog.test/post", shopPage)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "blog.test")

	resp, _ = do(t, http.MethodPost, srv.URL+"/annotate?origin=https://blog.test/post&all_domains=true", shopPage)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnnotateURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, shopPage)
	}))
	defer upstream.Close()
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/annotate?all_domains=true&url="+upstream.URL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "1d6h")
	assert.NotEmpty(t, resp.Header.Get("X-Timecost-Run"))

	resp, _ = do(t, http.MethodGet, srv.URL+"/annotate?url="+upstream.URL, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/annotate?url=not-a-url", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/settings/workingHoursPerDay", "4")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = do(t, http.MethodGet, srv.URL+"/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "workingHoursPerDay: 4")

	_, body = do(t, http.MethodPost, srv.URL+"/annotate?format=markdown", shopPage)
	assert.Contains(t, body, "1d3h")

	resp, _ = do(t, http.MethodPut, srv.URL+"/settings/workingHoursPerDay", "40")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, srv.URL+"/settings/colour", "red")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/settings/workingHoursPerDay", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = do(t, http.MethodGet, srv.URL+"/settings", "")
	assert.Contains(t, body, "workingHoursPerDay: 8")
}

func TestRuns(t *testing.T) {
	srv := newTestServer(t)

	do(t, http.MethodPost, srv.URL+"/annotate", shopPage)
	do(t, http.MethodPost, srv.URL+"/annotate?origin=https://www.ebay.com/itm/1", shopPage)

	resp, body := do(t, http.MethodGet, srv.URL+"/runs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &runs))
	assert.Len(t, runs, 2)

	_, body = do(t, http.MethodGet, srv.URL+"/runs?domain=ebay.com&limit=5", "")
	require.NoError(t, json.Unmarshal([]byte(body), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "ebay.com", runs[0]["domain"])
	assert.Equal(t, "upload", runs[0]["source"])
}
