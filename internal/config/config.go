package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации движка
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Streaming   StreamingConfig   `yaml:"streaming"`
	Destruction DestructionConfig `yaml:"destruction"`
	Storage     StorageConfig     `yaml:"storage"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Events      EventsConfig      `yaml:"events"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

type WorldConfig struct {
	Seed      uint32 `yaml:"seed"`
	Generator string `yaml:"generator"` // biome | flat
	Strict    bool   `yaml:"strict"`    // паника при нарушении инвариантов
	Assets    string `yaml:"assets"`    // каталог PNG-текстур (опционально)
}

type StreamingConfig struct {
	RenderDistance  int `yaml:"render_distance"`
	PhysicsDistance int `yaml:"physics_distance"`
	LoadsPerTick    int `yaml:"loads_per_tick"`
	MinLayer        int `yaml:"min_layer"`
	MaxLayer        int `yaml:"max_layer"`
}

type DestructionConfig struct {
	Reach      float64                  `yaml:"reach"`
	BreakTimes map[string]time.Duration `yaml:"break_times"` // имя типа -> время
}

type StorageConfig struct {
	Backend       string `yaml:"backend"` // badger | redis | mysql | memory
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
	MySQLDSN      string `yaml:"mysql_dsn"`
}

type ServerConfig struct {
	HTTPPort int    `yaml:"http_port"`
	TickRate int    `yaml:"tick_rate"` // тиков в секунду
	GinMode  string `yaml:"gin_mode"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"` // пусто: только консоль
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

type EventsConfig struct {
	Backend   string        `yaml:"backend"` // пусто: выключено | memory | nats
	Capacity  int           `yaml:"capacity"`
	NATSURL   string        `yaml:"nats_url"`
	Stream    string        `yaml:"stream"`
	Retention time.Duration `yaml:"retention"`
}

type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // пусто: трассировка выключена
	Insecure     bool    `yaml:"insecure"`
	ServiceName  string  `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// Значения по умолчанию
const (
	DefaultSeed     = 42
	DefaultHTTPPort = 8090
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:      DefaultSeed,
			Generator: "biome",
		},
		Streaming: StreamingConfig{
			RenderDistance:  5,
			PhysicsDistance: 2,
			LoadsPerTick:    1,
		},
		Destruction: DestructionConfig{
			Reach: 6,
		},
		Storage: StorageConfig{
			Backend: "badger",
			Path:    "data",
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			TickRate: 30,
			GinMode:  "release",
		},
		Logging: LoggingConfig{
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
		},
		Events: EventsConfig{
			Capacity:  1024,
			Retention: 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-world",
			SampleRatio: 0.1,
		},
	}
}

// GetHTTPPort возвращает порт админского API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "VOXEL_HTTP_PORT", DefaultHTTPPort)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// GetSeed возвращает сид: config -> VOXEL_SEED -> DefaultSeed
func (w *WorldConfig) GetSeed() uint32 {
	if w.Seed > 0 {
		return w.Seed
	}
	if envVal := os.Getenv("VOXEL_SEED"); envVal != "" {
		if seed, err := strconv.ParseUint(envVal, 10, 32); err == nil {
			return uint32(seed)
		}
	}
	return DefaultSeed
}

// Load читает YAML файл поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG, иначе
// возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфига %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфига %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	s := c.Streaming
	switch {
	case s.RenderDistance < 0 || s.PhysicsDistance < 0:
		return fmt.Errorf("радиусы не могут быть отрицательными: render=%d physics=%d", s.RenderDistance, s.PhysicsDistance)
	case s.PhysicsDistance > s.RenderDistance:
		return fmt.Errorf("physics_distance (%d) больше render_distance (%d)", s.PhysicsDistance, s.RenderDistance)
	case s.LoadsPerTick < 1:
		return fmt.Errorf("loads_per_tick должен быть >= 1, получено %d", s.LoadsPerTick)
	case s.MaxLayer < s.MinLayer:
		return fmt.Errorf("max_layer (%d) меньше min_layer (%d)", s.MaxLayer, s.MinLayer)
	}

	switch c.World.Generator {
	case "biome", "flat":
	default:
		return fmt.Errorf("неизвестный генератор %q", c.World.Generator)
	}

	switch c.Storage.Backend {
	case "badger", "memory":
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("для redis нужен storage.redis_addr")
		}
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			return fmt.Errorf("для mysql нужен storage.mysql_dsn")
		}
	default:
		return fmt.Errorf("неизвестное хранилище %q", c.Storage.Backend)
	}

	if c.Server.TickRate <= 0 {
		return fmt.Errorf("tick_rate должен быть > 0, получено %d", c.Server.TickRate)
	}
	if c.Destruction.Reach <= 0 {
		return fmt.Errorf("reach должен быть > 0")
	}

	switch c.Events.Backend {
	case "", "memory":
	case "nats":
		if c.Events.NATSURL == "" {
			return fmt.Errorf("для nats нужен events.nats_url")
		}
	default:
		return fmt.Errorf("неизвестная шина событий %q", c.Events.Backend)
	}

	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sample_ratio вне диапазона [0,1]: %v", r)
	}
	return nil
}

// TickInterval длительность одного тика
func (s *ServerConfig) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(s.TickRate)
}
