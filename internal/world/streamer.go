package world

import (
	"sort"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
)

// StreamConfig радиусы и лимиты подгрузки чанков
type StreamConfig struct {
	RenderDistance  int // Радиус резидентности в чанках (по X/Z)
	PhysicsDistance int // Радиус, в котором у чанков есть коллайдеры
	LoadsPerTick    int
	MinLayer        int // Диапазон слоёв чанков по Y
	MaxLayer        int
}

// DefaultStreamConfig значения по умолчанию
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		RenderDistance:  5,
		PhysicsDistance: 2,
		LoadsPerTick:    1,
	}
}

// StreamReport итог одного тика подгрузки
type StreamReport struct {
	Viewer          ChunkPos
	Loaded          []ChunkPos
	Unloaded        []ChunkPos
	PhysicsLoaded   []ChunkPos
	PhysicsUnloaded []ChunkPos
	Links           int
}

// Streamer держит резидентными чанки вокруг наблюдателя
type Streamer struct {
	world  *World
	cfg    StreamConfig
	logger *logging.Logger
}

// NewStreamer создаёт планировщик подгрузки
func NewStreamer(w *World, cfg StreamConfig, logger *logging.Logger) *Streamer {
	if cfg.LoadsPerTick <= 0 {
		cfg.LoadsPerTick = 1
	}
	if cfg.MaxLayer < cfg.MinLayer {
		cfg.MaxLayer = cfg.MinLayer
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Streamer{world: w, cfg: cfg, logger: logger}
}

// Config текущие параметры
func (s *Streamer) Config() StreamConfig {
	return s.cfg
}

// Tick выполняет фазы в фиксированном порядке: выгрузка, не более
// LoadsPerTick загрузок, уровни физики, связывание.
func (s *Streamer) Tick(viewer vec.Vec3Float) StreamReport {
	center := ViewerChunk(viewer)
	report := StreamReport{Viewer: center}

	r2 := int64(s.cfg.RenderDistance) * int64(s.cfg.RenderDistance)
	for _, pos := range s.world.Resident() {
		if pos.HorizontalDistSq(center) > r2 {
			s.world.UnloadChunk(pos)
			report.Unloaded = append(report.Unloaded, pos)
		}
	}

	for _, pos := range s.Candidates(center) {
		if len(report.Loaded) >= s.cfg.LoadsPerTick {
			break
		}
		if _, ok := s.world.Chunk(pos); ok {
			continue
		}
		s.world.LoadOrGenerate(pos)
		report.Loaded = append(report.Loaded, pos)
	}

	p2 := int64(s.cfg.PhysicsDistance) * int64(s.cfg.PhysicsDistance)
	for _, pos := range s.world.Resident() {
		c, ok := s.world.Chunk(pos)
		if !ok {
			continue
		}
		if pos.HorizontalDistSq(center) <= p2 {
			if c.Physics != PhysicsSurface {
				s.world.LoadPhysics(pos)
				report.PhysicsLoaded = append(report.PhysicsLoaded, pos)
			}
		} else if c.Physics != PhysicsNone {
			s.world.UnloadPhysics(pos)
			report.PhysicsUnloaded = append(report.PhysicsUnloaded, pos)
		}
	}

	report.Links = s.world.LinkPass()

	if len(report.Loaded) > 0 || len(report.Unloaded) > 0 {
		s.logger.Debug("Подгрузка вокруг %s: +%d -%d, связей %d",
			center, len(report.Loaded), len(report.Unloaded), report.Links)
	}
	return report
}

// Candidates позиции в радиусе отрисовки, ближайшие первыми
// (равные расстояния упорядочены по x, затем z, затем y).
func (s *Streamer) Candidates(center ChunkPos) []ChunkPos {
	r := int32(s.cfg.RenderDistance)
	r2 := int64(r) * int64(r)

	var out []ChunkPos
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			if int64(dx)*int64(dx)+int64(dz)*int64(dz) > r2 {
				continue
			}
			for y := s.cfg.MinLayer; y <= s.cfg.MaxLayer; y++ {
				out = append(out, ChunkPos{X: center.X + dx, Y: int32(y), Z: center.Z + dz})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].HorizontalDistSq(center), out[j].HorizontalDistSq(center)
		if di != dj {
			return di < dj
		}
		return lessChunkPos(out[i], out[j])
	})
	return out
}
