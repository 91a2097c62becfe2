package eventbus

import (
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Типы событий движка
const (
	ChunkLoaded   = "ChunkLoaded"
	ChunkUnloaded = "ChunkUnloaded"
	BlockBroken   = "BlockBroken"
	GameSaved     = "GameSaved"
	GameLoaded    = "GameLoaded"
)

// Приоритеты: подгрузку можно терять, сохранения нет
const (
	PriorityLow    = 1
	PriorityNormal = 3
	PriorityHigh   = 7
)

type ChunkEvent struct {
	Chunk world.ChunkPos `json:"chunk"`
}

type BlockBrokenEvent struct {
	Pos    vec.Vec3   `json:"pos"`
	Type   block.Type `json:"type"`
	Viewer string     `json:"viewer"`
}

type SaveEvent struct {
	Key   string `json:"key"`
	Edits int    `json:"edits"`
}
