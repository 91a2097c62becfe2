// Package destruction реализует разрушение блоков наблюдателем: удержание
// кнопки по наведённому блоку копит прогресс, трещины растут по порогам,
// при полном прогрессе блок становится воздухом.
package destruction

import (
	"time"

	"github.com/google/uuid"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Thresholds пороги прогресса для стадий трещин
var Thresholds = [...]float64{0.2, 0.4, 0.6, 0.8}

// DefaultReach дальность луча по умолчанию (в блоках)
const DefaultReach = 6.0

// StageFor число пройденных порогов
func StageFor(progress float64) int {
	stage := 0
	for _, t := range Thresholds {
		if progress >= t {
			stage++
		}
	}
	return stage
}

// State состояние разрушителя
type State uint8

const (
	Idle State = iota
	Targeting
)

func (s State) String() string {
	if s == Targeting {
		return "targeting"
	}
	return "idle"
}

// Input ввод наблюдателя за тик
type Input struct {
	Origin vec.Vec3Float // Позиция камеры
	Look   vec.Vec3Float // Направление взгляда
	Held   bool          // Основная кнопка удерживается
	Dt     time.Duration
}

// Outcome результат тика
type Outcome struct {
	State    State
	Target   world.BlockRef
	Progress float64
	Stage    int

	Broken     bool
	BrokenType block.Type
	BrokenAt   vec.Vec3
}

// Breaker разрушитель одного наблюдателя
type Breaker struct {
	id     uuid.UUID
	world  *world.World
	reach  float64
	logger *logging.Logger

	state   State
	target  world.BlockRef
	elapsed time.Duration
	stage   int
}

// NewBreaker создаёт разрушитель с новым идентификатором
func NewBreaker(w *world.World, reach float64, logger *logging.Logger) *Breaker {
	if reach <= 0 {
		reach = DefaultReach
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Breaker{
		id:     uuid.New(),
		world:  w,
		reach:  reach,
		logger: logger,
	}
}

// ID идентификатор наблюдателя
func (b *Breaker) ID() uuid.UUID {
	return b.id
}

// State текущее состояние
func (b *Breaker) State() State {
	return b.state
}

// Target текущая цель; NoBlock в состоянии Idle
func (b *Breaker) Target() world.BlockRef {
	return b.target
}

func (b *Breaker) idle() Outcome {
	b.state = Idle
	b.target = world.NoBlock
	b.elapsed = 0
	b.stage = 0
	return Outcome{State: Idle}
}

// Tick продвигает разрушение на один тик
func (b *Breaker) Tick(in Input) Outcome {
	if !in.Held {
		return b.idle()
	}

	hit, ok := b.world.Physics().CastRay(in.Origin, in.Look, b.reach, physics.GroupBlocks)
	if !ok {
		return b.idle()
	}
	ref, ok := b.world.BlockAt(hit.Block)
	if !ok {
		return b.idle()
	}
	target := b.world.Block(ref)
	if target == nil || target.Type == block.Air {
		return b.idle()
	}

	if b.state != Targeting || ref != b.target {
		b.state = Targeting
		b.target = ref
		b.elapsed = 0
		b.stage = 0
		b.logger.Trace("Наблюдатель %s нацелился на %s в %v", b.id, target.Type, hit.Block)
	}
	b.elapsed += in.Dt

	progress := float64(b.elapsed) / float64(target.Type.BreakTime())
	stage := StageFor(progress)
	if stage > b.stage {
		b.world.SetDamage(ref, stage)
		b.stage = stage
	}

	out := Outcome{State: Targeting, Target: ref, Progress: progress, Stage: stage}
	if progress >= 1 {
		kind := target.Type
		if b.world.BreakBlock(ref) {
			b.logger.Debug("Наблюдатель %s разрушил %s в %v", b.id, kind, hit.Block)
			out = b.idle()
			out.Target = ref
			out.Progress = progress
			out.Broken = true
			out.BrokenType = kind
			out.BrokenAt = hit.Block
		}
	}
	return out
}
