package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

// SaveVersion текущая версия формата сохранения
const SaveVersion = 1

var (
	// ErrCorruptSave блоб не распаковывается или не разбирается
	ErrCorruptSave = errors.New("повреждённое сохранение")
	// ErrVersionMismatch сохранение другой версии формата
	ErrVersionMismatch = errors.New("несовместимая версия сохранения")
)

// SaveFile содержимое сохранения: правки игрока и состояние наблюдателя.
// Сгенерированный рельеф не сохраняется, он восстанавливается из сида.
type SaveFile struct {
	Version   int         `json:"version"`
	ID        string      `json:"id"`
	Seed      uint32      `json:"seed"`
	Generator string      `json:"generator"`
	CreatedAt time.Time   `json:"created_at"`
	Edits     []ChunkEdit `json:"edits"`
	Viewer    ViewerState `json:"viewer"`
}

// ChunkEdit правки одного чанка
type ChunkEdit struct {
	Chunk  world.ChunkPos `json:"chunk"`
	Blocks []BlockEdit    `json:"blocks"`
}

// BlockEdit правка одного блока
type BlockEdit struct {
	Pos  world.PosInChunk `json:"pos"`
	Type block.Type       `json:"type"`
}

// ViewerState состояние наблюдателя
type ViewerState struct {
	Position vec.Vec3Float `json:"position"`
	Look     vec.Vec3Float `json:"look"`
	Velocity vec.Vec3Float `json:"velocity"`
}

// EditsFromSaves преобразует правки мира в детерминированный список
func EditsFromSaves(saves world.ChunkSaves) []ChunkEdit {
	edits := make([]ChunkEdit, 0, len(saves))
	for pos, save := range saves {
		if len(save) == 0 {
			continue
		}
		edit := ChunkEdit{Chunk: pos, Blocks: make([]BlockEdit, 0, len(save))}
		for p, t := range save {
			edit.Blocks = append(edit.Blocks, BlockEdit{Pos: p, Type: t})
		}
		sort.Slice(edit.Blocks, func(i, j int) bool {
			return edit.Blocks[i].Pos.Index() < edit.Blocks[j].Pos.Index()
		})
		edits = append(edits, edit)
	}
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i].Chunk, edits[j].Chunk
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return edits
}

// Saves восстанавливает правки мира с проверкой позиций
func (f *SaveFile) Saves() (world.ChunkSaves, error) {
	saves := make(world.ChunkSaves, len(f.Edits))
	for _, edit := range f.Edits {
		for _, b := range edit.Blocks {
			p, err := world.NewPosInChunk(int(b.Pos.X), int(b.Pos.Y), int(b.Pos.Z))
			if err != nil {
				return nil, fmt.Errorf("%w: чанк %s: %v", ErrCorruptSave, edit.Chunk, err)
			}
			if !block.IsValid(b.Type) {
				return nil, fmt.Errorf("%w: недопустимый тип %d", ErrCorruptSave, b.Type)
			}
			saves.Record(edit.Chunk, p, b.Type)
		}
	}
	return saves, nil
}

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Encode сериализует сохранение в JSON и сжимает zstd
func Encode(f *SaveFile) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode распаковывает и разбирает сохранение, проверяя версию
func Decode(data []byte) (*SaveFile, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptSave, err)
	}

	var f SaveFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrCorruptSave, err)
	}
	if f.Version != SaveVersion {
		return nil, fmt.Errorf("%w: %d, ожидалась %d", ErrVersionMismatch, f.Version, SaveVersion)
	}
	return &f, nil
}
