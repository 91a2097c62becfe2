package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/game"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/middleware"
	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/vec"
)

type fakeEngine struct {
	saveErr error
	loadKey string
	loadErr error
	saves   int
}

func (f *fakeEngine) Status() game.Status {
	return game.Status{Tick: 7, Seed: 42, Generator: "flat", Resident: 3}
}

func (f *fakeEngine) Save(context.Context) (string, error) {
	f.saves++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return "save:00000000000000000001", nil
}

func (f *fakeEngine) LoadLatest(context.Context) (string, error) {
	return f.loadKey, f.loadErr
}

func newServer(t *testing.T, eng Engine) (*RestServer, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	rs := NewRestServer(Config{Engine: eng, Registry: reg, GinMode: "test"})
	return rs, reg
}

func do(t *testing.T, rs *RestServer, method, path string) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, req)

	var body GenericResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rs, _ := newServer(t, &fakeEngine{})
	rec, _ := do(t, rs, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestWorldStatus(t *testing.T) {
	rs, _ := newServer(t, &fakeEngine{})
	rec, body := do(t, rs, http.MethodGet, "/api/world")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, 7.0, data["tick"])
	assert.Equal(t, 3.0, data["resident_chunks"])
}

func TestSaveAndLoad(t *testing.T) {
	eng := &fakeEngine{loadKey: "save:00000000000000000001"}
	rs, _ := newServer(t, eng)

	rec, body := do(t, rs, http.MethodPost, "/api/save")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, eng.saves)
	assert.Equal(t, "save:00000000000000000001", body.Data.(map[string]interface{})["key"])

	rec, body = do(t, rs, http.MethodPost, "/api/load")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Загружено", body.Message)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		eng  *fakeEngine
		code int
	}{
		{"пусто", &fakeEngine{}, http.StatusOK},
		{"повреждено", &fakeEngine{loadErr: fmt.Errorf("%w: json", storage.ErrCorruptSave)}, http.StatusUnprocessableEntity},
		{"версия", &fakeEngine{loadErr: storage.ErrVersionMismatch}, http.StatusUnprocessableEntity},
		{"хранилище", &fakeEngine{loadErr: fmt.Errorf("redis недоступен")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs, _ := newServer(t, tc.eng)
			rec, _ := do(t, rs, http.MethodPost, "/api/load")
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestSaveError(t *testing.T) {
	rs, _ := newServer(t, &fakeEngine{saveErr: fmt.Errorf("диск заполнен")})
	rec, body := do(t, rs, http.MethodPost, "/api/save")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, body.Success)
}

func TestMetricsEndpointServesEngineAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := config.Default()
	cfg.World.Generator = "flat"
	cfg.Storage.Backend = "memory"
	eng, err := game.New(game.Options{Config: cfg, Metrics: m})
	require.NoError(t, err)
	eng.Tick(context.Background(), game.Input{Position: vec.Vec3Float{X: 2, Y: 5, Z: 2}})

	rs := NewRestServer(Config{Engine: eng, Registry: reg, GinMode: "test"})
	do(t, rs, http.MethodGet, "/health")

	rec, _ := do(t, rs, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "voxel_resident_chunks 1")
	assert.Contains(t, out, "voxel_block_evaluations_total")
	assert.Contains(t, out, `admin_api_http_request_duration_seconds_count{method="GET",path="/health",status="200"} 1`)
}

func TestServerInfoWithSampler(t *testing.T) {
	reg := prometheus.NewRegistry()
	sampler, err := metrics.NewProcessSampler(metrics.New(reg), nil)
	require.NoError(t, err)

	rs := NewRestServer(Config{Engine: &fakeEngine{}, Registry: reg, Sampler: sampler, GinMode: "test"})
	rec, body := do(t, rs, http.MethodGet, "/api/server")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, Version, data["version"])
	assert.Contains(t, data, "process")
}
