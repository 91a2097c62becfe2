// Package api админский HTTP-сервер движка: здоровье, метрики, состояние
// мира, ручное сохранение и загрузка.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-world/internal/game"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/middleware"
	"github.com/annel0/voxel-world/internal/storage"
)

// Version версия админского API
const Version = "v0.1.0"

// Engine операции движка, доступные через API
type Engine interface {
	Status() game.Status
	Save(ctx context.Context) (string, error)
	LoadLatest(ctx context.Context) (string, error)
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Addr     string               // адрес прослушивания, например ":8090"
	GinMode  string               // release | debug | test
	Engine   Engine               // движок
	Registry *prometheus.Registry // регистр метрик для /metrics
	Sampler  *metrics.ProcessSampler
	Logger   *logging.Logger

	// RequestTimeout ограничивает сохранение и загрузку
	RequestTimeout time.Duration
}

// RestServer представляет админский REST API
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	engine  Engine
	sampler *metrics.ProcessSampler
	logger  *logging.Logger
	timeout time.Duration
	started time.Time
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Addr == "" {
		config.Addr = ":8090"
	}
	if config.GinMode == "" {
		config.GinMode = gin.ReleaseMode
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}

	gin.SetMode(config.GinMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	// Спаны запросов; без настроенного провайдера OpenTelemetry это no-op
	router.Use(otelgin.Middleware("admin_api"))

	promMw := middleware.NewPrometheusMiddleware("admin_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	rs := &RestServer{
		router:  router,
		engine:  config.Engine,
		sampler: config.Sampler,
		logger:  config.Logger,
		timeout: config.RequestTimeout,
		started: time.Now(),
	}
	rs.server = &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/world", rs.handleWorld)
		api.POST("/save", rs.handleSave)
		api.POST("/load", rs.handleLoad)
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := gin.H{
		"version": Version,
		"name":    "Voxel World Engine",
		"status":  "running",
		"uptime":  time.Since(rs.started).Round(time.Second).String(),
	}
	if rs.sampler != nil {
		stats, err := rs.sampler.Sample()
		if err != nil {
			rs.logger.Warn("Метрики процесса недоступны: %v", err)
		} else {
			info["process"] = stats
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

func (rs *RestServer) handleWorld(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние мира",
		Data:    rs.engine.Status(),
	})
}

func (rs *RestServer) handleSave(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()

	key, err := rs.engine.Save(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Сохранение не удалось: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Сохранено",
		Data:    gin.H{"key": key},
	})
}

func (rs *RestServer) handleLoad(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()

	key, err := rs.engine.LoadLatest(ctx)
	switch {
	case errors.Is(err, storage.ErrCorruptSave), errors.Is(err, storage.ErrVersionMismatch):
		c.JSON(http.StatusUnprocessableEntity, GenericResponse{
			Success: false,
			Message: "Сохранение не загружено: " + err.Error(),
		})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Загрузка не удалась: " + err.Error(),
		})
		return
	case key == "":
		c.JSON(http.StatusOK, GenericResponse{
			Success: true,
			Message: "Сохранений нет",
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Загружено",
		Data:    gin.H{"key": key},
	})
}

// Start запускает сервер; блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("Админский API слушает %s", rs.server.Addr)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
