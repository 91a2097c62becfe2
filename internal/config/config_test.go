package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(42), cfg.World.Seed)
	assert.Equal(t, 5, cfg.Streaming.RenderDistance)
	assert.Equal(t, 2, cfg.Streaming.PhysicsDistance)
	assert.Equal(t, 1, cfg.Streaming.LoadsPerTick)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, time.Second/30, cfg.Server.TickInterval())
}

func TestLoadWithoutPath(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxel.yaml")
	data := `
world:
  seed: 7
  generator: flat
streaming:
  render_distance: 3
  physics_distance: 1
destruction:
  break_times:
    stone: 3s
storage:
  backend: memory
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	t.Setenv("VOXEL_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), cfg.World.Seed)
	assert.Equal(t, "flat", cfg.World.Generator)
	assert.Equal(t, 3, cfg.Streaming.RenderDistance)
	assert.Equal(t, 1, cfg.Streaming.LoadsPerTick, "незаданное поле берётся из умолчаний")
	assert.Equal(t, 3*time.Second, cfg.Destruction.BreakTimes["stone"])
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"physics больше render": func(c *Config) { c.Streaming.PhysicsDistance = 9 },
		"отрицательный радиус":  func(c *Config) { c.Streaming.RenderDistance = -1 },
		"нет загрузок":          func(c *Config) { c.Streaming.LoadsPerTick = 0 },
		"слои наоборот":         func(c *Config) { c.Streaming.MinLayer = 2 },
		"генератор":             func(c *Config) { c.World.Generator = "caves" },
		"хранилище":             func(c *Config) { c.Storage.Backend = "tape" },
		"redis без адреса":      func(c *Config) { c.Storage.Backend = "redis" },
		"mysql без dsn":         func(c *Config) { c.Storage.Backend = "mysql" },
		"нулевой tick rate":     func(c *Config) { c.Server.TickRate = 0 },
		"шина":                  func(c *Config) { c.Events.Backend = "kafka" },
		"nats без адреса":       func(c *Config) { c.Events.Backend = "nats" },
		"доля сэмплирования":    func(c *Config) { c.Telemetry.SampleRatio = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("VOXEL_HTTP_PORT", "9100")
	t.Setenv("VOXEL_SEED", "777")

	server := ServerConfig{}
	assert.Equal(t, 9100, server.GetHTTPPort())
	server.HTTPPort = 8000
	assert.Equal(t, 8000, server.GetHTTPPort())

	w := WorldConfig{}
	assert.Equal(t, uint32(777), w.GetSeed())
	w.Seed = 5
	assert.Equal(t, uint32(5), w.GetSeed())

	t.Setenv("VOXEL_SEED", "")
	empty := WorldConfig{}
	assert.Equal(t, uint32(DefaultSeed), empty.GetSeed())
}
