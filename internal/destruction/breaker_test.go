package destruction

import (
	"testing"
	"time"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func (c *counter) BlockEvaluated(world.BlockRef) { c.n++ }

func setup(t *testing.T) (*world.World, *counter) {
	t.Helper()
	obs := &counter{}
	w := world.New(world.Options{Generator: world.NewFlatGenerator(1), Observer: obs, Strict: true})
	w.LoadOrGenerate(world.ChunkPos{})
	return w, obs
}

var down = vec.Vec3Float{Y: -1}

func TestStageFor(t *testing.T) {
	assert.Equal(t, 0, StageFor(0))
	assert.Equal(t, 0, StageFor(0.19))
	assert.Equal(t, 1, StageFor(0.2))
	assert.Equal(t, 3, StageFor(0.7))
	assert.Equal(t, 4, StageFor(0.99))
	assert.Equal(t, 4, StageFor(1.5))
}

func TestBreakerBreaksTargetAfterBreakTime(t *testing.T) {
	w, obs := setup(t)
	b := NewBreaker(w, 6, nil)
	in := Input{Origin: vec.Vec3Float{X: 4, Y: 8, Z: 4}, Look: down, Held: true, Dt: 100 * time.Millisecond}

	first := b.Tick(in)
	require.Equal(t, Targeting, first.State)
	assert.InDelta(t, 1.0/9, first.Progress, 1e-9, "первый тик уже засчитан")
	target := first.Target
	require.Equal(t, block.Grass, w.Block(target).Type)

	var out Outcome
	ticks := 1
	maxStage := 0
	for !out.Broken && ticks < 20 {
		obs.n = 0
		out = b.Tick(in)
		ticks++
		if !out.Broken {
			assert.Equal(t, target, out.Target)
			assert.GreaterOrEqual(t, out.Stage, maxStage, "стадия не убывает")
			maxStage = out.Stage
			if out.Stage > 0 {
				assert.Equal(t, out.Stage, w.Block(target).Faces[0].Damage)
			}
		}
	}

	require.True(t, out.Broken)
	assert.Equal(t, 9, ticks, "900 мс при шаге 100 мс")
	assert.InDelta(t, 1.0, out.Progress, 1e-9)
	assert.Equal(t, 4, maxStage)
	assert.Equal(t, block.Grass, out.BrokenType)
	assert.Equal(t, vec.Vec3{X: 4, Y: 3, Z: 4}, out.BrokenAt)
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, world.NoBlock, b.Target())

	assert.Equal(t, 6, obs.n, "каждый сосед пересчитан ровно один раз")
	assert.Equal(t, block.Air, w.Block(target).Type)
	assert.Equal(t, block.Air, w.Saves()[world.ChunkPos{}][world.MustPos(4, 3, 4)])

	// Следующий луч попадает в открывшийся камень
	next := b.Tick(in)
	assert.Equal(t, Targeting, next.State)
	assert.Equal(t, block.Stone, w.Block(next.Target).Type)
}

func TestBreakerReleaseResets(t *testing.T) {
	w, _ := setup(t)
	b := NewBreaker(w, 6, nil)
	in := Input{Origin: vec.Vec3Float{X: 4, Y: 8, Z: 4}, Look: down, Held: true, Dt: 300 * time.Millisecond}

	out := b.Tick(in)
	require.Equal(t, 1, out.Stage)
	out = b.Tick(in)
	require.Equal(t, 3, out.Stage)

	in.Held = false
	out = b.Tick(in)
	assert.Equal(t, Idle, out.State)
	assert.Equal(t, world.NoBlock, b.Target())

	in.Held = true
	out = b.Tick(in)
	assert.InDelta(t, 1.0/3, out.Progress, 1e-9, "отсчёт начат заново")
}

func TestBreakerRetargetResetsProgress(t *testing.T) {
	w, _ := setup(t)
	b := NewBreaker(w, 6, nil)
	in := Input{Origin: vec.Vec3Float{X: 4, Y: 8, Z: 4}, Look: down, Held: true, Dt: 300 * time.Millisecond}

	b.Tick(in)
	out := b.Tick(in)
	require.Greater(t, out.Progress, 0.0)
	first := out.Target

	in.Origin = vec.Vec3Float{X: 5, Y: 8, Z: 4}
	out = b.Tick(in)
	assert.NotEqual(t, first, out.Target)
	assert.InDelta(t, 1.0/3, out.Progress, 1e-9)
	assert.Equal(t, Targeting, out.State)
}

func TestBreakerMissIsIdle(t *testing.T) {
	w, _ := setup(t)
	b := NewBreaker(w, 6, nil)

	up := Input{Origin: vec.Vec3Float{X: 4, Y: 8, Z: 4}, Look: vec.Vec3Float{Y: 1}, Held: true, Dt: time.Second}
	assert.Equal(t, Idle, b.Tick(up).State)

	far := Input{Origin: vec.Vec3Float{X: 4, Y: 12, Z: 4}, Look: down, Held: true, Dt: time.Second}
	assert.Equal(t, Idle, b.Tick(far).State, "блок дальше досягаемости")
}

func TestBreakersHaveDistinctIDs(t *testing.T) {
	w, _ := setup(t)
	assert.NotEqual(t, NewBreaker(w, 0, nil).ID(), NewBreaker(w, 0, nil).ID())
}
