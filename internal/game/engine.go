// Package game связывает мир, подгрузку, разрушение и хранилище в один
// цикл тиков с фиксированным порядком фаз.
package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/destruction"
	"github.com/annel0/voxel-world/internal/eventbus"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Полуразмеры тела наблюдателя для проверки опоры
var viewerHalf = vec.Vec3Float{X: 0.3, Y: 0.9, Z: 0.3}

const groundEpsilon = 0.05

var tracer = otel.Tracer("github.com/annel0/voxel-world/internal/game")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Input ввод наблюдателя за один тик
type Input struct {
	Position         vec.Vec3Float
	Look             vec.Vec3Float
	Velocity         vec.Vec3Float
	PrimaryHeld      bool // Кнопка разрушения удерживается
	SecondaryPressed bool // Нажата в этом тике: быстрое сохранение
	Dt               time.Duration
}

// TickReport итог тика
type TickReport struct {
	Tick        uint64
	Stream      world.StreamReport
	Destruction destruction.Outcome
	DamageReset int
	Swapped     int // Граней с переключённым материалом
	Pumped      int // Материалов, ставших готовыми
	SaveKey     string
	SaveErr     error
	Duration    time.Duration
}

// Status снимок состояния движка для админского API
type Status struct {
	Tick         uint64              `json:"tick"`
	Seed         uint32              `json:"seed"`
	Generator    string              `json:"generator"`
	Resident     int                 `json:"resident_chunks"`
	VisibleFaces int                 `json:"visible_faces"`
	Edits        int                 `json:"edits"`
	Damaged      int                 `json:"damaged_blocks"`
	Viewer       storage.ViewerState `json:"viewer"`
	ViewerChunk  world.ChunkPos      `json:"viewer_chunk"`
	Grounded     bool                `json:"grounded"`
	BreakerID    string              `json:"breaker_id"`
	BreakerState string              `json:"breaker_state"`
	LastSave     string              `json:"last_save,omitempty"`
}

// Options зависимости движка. Пустые поля заменяются реализациями в памяти.
type Options struct {
	Config  *config.Config
	Store   storage.BlobStore
	Mesh    render.Sink
	Physics physics.Sink
	Metrics *metrics.Collectors
	Bus     eventbus.EventBus // nil: события не публикуются
	Logger  *logging.Logger

	Now func() time.Time // источник времени (тесты)
}

// Engine владеет миром и выполняет тики. Все методы защищены мьютексом,
// поэтому админский API может вызывать их из своей горутины.
type Engine struct {
	mu sync.Mutex

	cfg      *config.Config
	world    *world.World
	streamer *world.Streamer
	breaker  *destruction.Breaker
	store    storage.BlobStore
	metrics  *metrics.Collectors
	bus      eventbus.EventBus
	logger   *logging.Logger
	now      func() time.Time

	viewer    storage.ViewerState
	tick      uint64
	lastSave  string
	lastNanos int64
}

// New создаёт движок по конфигурации
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ApplyBreakTimes(cfg.Destruction.BreakTimes); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gen, err := world.NewGenerator(cfg.World.Generator, cfg.World.GetSeed())
	if err != nil {
		return nil, err
	}

	mesh := opts.Mesh
	if mesh == nil {
		if assets := cfg.World.Assets; assets != "" {
			mesh = render.NewScene(os.DirFS(assets), logger)
		} else {
			mesh = render.NewScene(nil, logger)
		}
	}

	wopts := world.Options{
		Generator: gen,
		Mesh:      mesh,
		Physics:   opts.Physics,
		Logger:    logger,
		Strict:    cfg.World.Strict,
	}
	if opts.Metrics != nil {
		wopts.Observer = opts.Metrics
	}
	w := world.New(wopts)

	s := cfg.Streaming
	streamer := world.NewStreamer(w, world.StreamConfig{
		RenderDistance:  s.RenderDistance,
		PhysicsDistance: s.PhysicsDistance,
		LoadsPerTick:    s.LoadsPerTick,
		MinLayer:        s.MinLayer,
		MaxLayer:        s.MaxLayer,
	}, logger)

	e := &Engine{
		cfg:      cfg,
		world:    w,
		streamer: streamer,
		breaker:  destruction.NewBreaker(w, cfg.Destruction.Reach, logger),
		store:    opts.Store,
		metrics:  opts.Metrics,
		bus:      opts.Bus,
		logger:   logger,
		now:      opts.Now,
	}
	logger.Info("Движок создан: генератор %s, сид %d, радиус %d/%d",
		gen.Kind(), gen.Seed(), s.RenderDistance, s.PhysicsDistance)
	return e, nil
}

// ApplyBreakTimes переопределяет время разрушения типов блоков по именам.
// Таблица проверяется целиком: при ошибке реестр не меняется.
func ApplyBreakTimes(times map[string]time.Duration) error {
	parsed := make(map[block.Type]time.Duration, len(times))
	for name, d := range times {
		t, err := block.ParseType(name)
		if err != nil {
			return fmt.Errorf("destruction.break_times: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("destruction.break_times[%s]: время должно быть > 0", name)
		}
		parsed[t] = d
	}
	for t, d := range parsed {
		props, _ := block.Get(t)
		props.BreakTime = d
		block.Register(t, props)
	}
	return nil
}

// Tick выполняет один тик: подгрузка, разрушение, сброс трещин,
// переключение материалов, прокачка рендера, быстрое сохранение.
func (e *Engine) Tick(ctx context.Context, in Input) TickReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.tick++
	e.viewer = storage.ViewerState{Position: in.Position, Look: in.Look, Velocity: in.Velocity}

	report := TickReport{Tick: e.tick}
	report.Stream = e.streamer.Tick(in.Position)

	report.Destruction = e.breaker.Tick(destruction.Input{
		Origin: in.Position,
		Look:   in.Look,
		Held:   in.PrimaryHeld,
		Dt:     in.Dt,
	})
	report.DamageReset = e.world.ResetDamage(e.breaker.Target())
	report.Swapped = e.world.ApplyNextMaterials()
	report.Pumped = e.world.Mesh().Pump()

	if in.SecondaryPressed {
		report.SaveKey, report.SaveErr = e.saveLocked(ctx)
	}
	e.publishTick(ctx, report)

	report.Duration = time.Since(start)
	if e.metrics != nil {
		e.metrics.ObserveStream(report.Stream)
		e.metrics.ObserveWorld(e.world)
		e.metrics.ObserveTick(report.Duration)
		if report.Destruction.Broken {
			e.metrics.BlocksBroken.Inc()
		}
	}
	return report
}

// Save записывает сохранение и возвращает его ключ
func (e *Engine) Save(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

func (e *Engine) saveLocked(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Engine.Save")
	key, err := e.writeSave(ctx)
	span.SetAttributes(attribute.String("voxel.save_key", key))
	endSpan(span, err)
	if e.metrics != nil {
		e.metrics.Saves.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		e.logger.Error("Сохранение не удалось: %v", err)
		return "", err
	}
	return key, nil
}

func (e *Engine) writeSave(ctx context.Context) (string, error) {
	now := e.now()
	// Ключи строго возрастают даже при совпадении времени
	nanos := now.UnixNano()
	if nanos <= e.lastNanos {
		nanos = e.lastNanos + 1
	}
	key := storage.SaveKey(time.Unix(0, nanos))

	gen := e.world.Generator()
	f := &storage.SaveFile{
		Version:   storage.SaveVersion,
		ID:        uuid.NewString(),
		Seed:      gen.Seed(),
		Generator: gen.Kind(),
		CreatedAt: now.UTC(),
		Edits:     storage.EditsFromSaves(e.world.Saves()),
		Viewer:    e.viewer,
	}
	data, err := storage.Encode(f)
	if err != nil {
		return "", err
	}
	if err := e.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("запись %s: %w", key, err)
	}

	e.lastNanos = nanos
	e.lastSave = key
	e.logger.Info("Сохранение %s записано: %d чанков с правками, %d байт", key, len(f.Edits), len(data))
	e.publish(ctx, eventbus.GameSaved, eventbus.PriorityHigh, eventbus.SaveEvent{Key: key, Edits: e.world.Saves().Len()})
	return key, nil
}

// LoadLatest загружает последнее сохранение. Отсутствие сохранений не
// является ошибкой: возвращается пустой ключ. При ошибке чтения или
// разбора мир не меняется.
func (e *Engine) LoadLatest(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := tracer.Start(ctx, "Engine.LoadLatest")
	key, err := e.loadLatestLocked(ctx)
	span.SetAttributes(attribute.String("voxel.save_key", key))
	endSpan(span, err)
	if e.metrics != nil {
		result := metrics.Result(err)
		if err == nil && key == "" {
			result = "empty"
		}
		e.metrics.Loads.WithLabelValues(result).Inc()
	}
	return key, err
}

func (e *Engine) loadLatestLocked(ctx context.Context) (string, error) {
	key, data, err := e.store.Latest(ctx)
	if errors.Is(err, storage.ErrNoSave) {
		e.logger.Info("Сохранений нет, мир начинается с чистого листа")
		return "", nil
	}
	if err != nil {
		e.logger.Warn("Не удалось прочитать последнее сохранение: %v", err)
		return "", err
	}

	f, err := storage.Decode(data)
	if err != nil {
		e.logger.Warn("Сохранение %s не загружено: %v", key, err)
		return "", err
	}
	saves, err := f.Saves()
	if err != nil {
		e.logger.Warn("Сохранение %s не загружено: %v", key, err)
		return "", err
	}

	gen := e.world.Generator()
	if f.Seed != gen.Seed() || (f.Generator != "" && f.Generator != gen.Kind()) {
		next, err := world.NewGenerator(f.Generator, f.Seed)
		if err != nil {
			e.logger.Warn("Сохранение %s: %v", key, err)
			return "", err
		}
		e.logger.Info("Генератор из сохранения: %s, сид %d", next.Kind(), next.Seed())
		e.world.SetGenerator(next)
	}

	e.world.ReplaceSaves(saves)
	e.viewer = f.Viewer
	e.lastSave = key
	e.logger.Info("Загружено сохранение %s (%s): %d правок", key, f.ID, saves.Len())
	e.publish(ctx, eventbus.GameLoaded, eventbus.PriorityHigh, eventbus.SaveEvent{Key: key, Edits: saves.Len()})
	return key, nil
}

func (e *Engine) publishTick(ctx context.Context, r TickReport) {
	if e.bus == nil {
		return
	}
	for _, pos := range r.Stream.Loaded {
		e.publish(ctx, eventbus.ChunkLoaded, eventbus.PriorityLow, eventbus.ChunkEvent{Chunk: pos})
	}
	for _, pos := range r.Stream.Unloaded {
		e.publish(ctx, eventbus.ChunkUnloaded, eventbus.PriorityLow, eventbus.ChunkEvent{Chunk: pos})
	}
	if d := r.Destruction; d.Broken {
		e.publish(ctx, eventbus.BlockBroken, eventbus.PriorityNormal, eventbus.BlockBrokenEvent{
			Pos:    d.BrokenAt,
			Type:   d.BrokenType,
			Viewer: e.breaker.ID().String(),
		})
	}
}

func (e *Engine) publish(ctx context.Context, eventType string, priority int, payload interface{}) {
	if e.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope("engine", eventType, priority, payload)
	if err == nil {
		err = e.bus.Publish(ctx, ev)
	}
	if err != nil {
		e.logger.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}

// Viewer последнее известное состояние наблюдателя (из тика или сохранения)
func (e *Engine) Viewer() storage.ViewerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewer
}

// ViewerGrounded проверяет, стоит ли тело наблюдателя на коллайдере блока
func (e *Engine) ViewerGrounded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groundedLocked()
}

func (e *Engine) groundedLocked() bool {
	box := physics.BoxAround(e.viewer.Position, viewerHalf)
	for _, pos := range e.world.Physics().Contacts(box, physics.GroupBlocks) {
		top := float64(pos.Y) + 0.5
		if top <= box.Min.Y+groundEpsilon {
			return true
		}
	}
	return false
}

// Status снимок состояния
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	gen := e.world.Generator()
	return Status{
		Tick:         e.tick,
		Seed:         gen.Seed(),
		Generator:    gen.Kind(),
		Resident:     e.world.ResidentCount(),
		VisibleFaces: e.world.VisibleFaces(),
		Edits:        e.world.Saves().Len(),
		Damaged:      e.world.DamagedCount(),
		Viewer:       e.viewer,
		ViewerChunk:  world.ViewerChunk(e.viewer.Position),
		Grounded:     e.groundedLocked(),
		BreakerID:    e.breaker.ID().String(),
		BreakerState: e.breaker.State().String(),
		LastSave:     e.lastSave,
	}
}

// Do выполняет f под мьютексом движка (доступ к миру из тестов и утилит)
func (e *Engine) Do(f func(w *world.World)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.world)
}

// Close закрывает хранилище
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Close()
}
