package render

import (
	"fmt"
	"image"
	_ "image/png" // декодер текстур
	"io/fs"
	"sync"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
)

type material struct {
	texture string
	overlay string // пусто для базовых материалов
	ready   bool
	image   image.Image
}

// Scene безголовая реализация Sink: хранит грани и материалы в памяти.
// Материалы становятся готовыми на следующем Pump, что повторяет
// асинхронную загрузку ассетов настоящего рендера.
type Scene struct {
	mu sync.RWMutex

	assets fs.FS // nil: изображения не загружаются
	logger *logging.Logger

	nextFace     FaceID
	nextMaterial MaterialID
	faces        map[FaceID]FaceSpec
	materials    map[MaterialID]*material
	byKey        map[string]MaterialID
	textures     map[string]image.Image

	spawned   uint64
	despawned uint64
}

// NewScene создаёт пустую сцену. assets: источник PNG-текстур (опционально).
func NewScene(assets fs.FS, logger *logging.Logger) *Scene {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scene{
		assets:    assets,
		logger:    logger,
		faces:     make(map[FaceID]FaceSpec),
		materials: make(map[MaterialID]*material),
		byKey:     make(map[string]MaterialID),
		textures:  make(map[string]image.Image),
	}
}

// SpawnFace регистрирует грань
func (s *Scene) SpawnFace(spec FaceSpec) FaceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFace++
	s.faces[s.nextFace] = spec
	s.spawned++
	return s.nextFace
}

// DespawnFace удаляет грань
func (s *Scene) DespawnFace(id FaceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faces[id]; ok {
		delete(s.faces, id)
		s.despawned++
	}
}

// SetFaceMaterial меняет материал грани
func (s *Scene) SetFaceMaterial(id FaceID, m MaterialID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec, ok := s.faces[id]; ok {
		spec.Material = m
		s.faces[id] = spec
	}
}

// Material возвращает материал текстуры
func (s *Scene) Material(texture string) MaterialID {
	return s.material(texture, "")
}

// CompositeMaterial возвращает материал текстуры с оверлеем
func (s *Scene) CompositeMaterial(texture, overlay string) MaterialID {
	return s.material(texture, overlay)
}

func (s *Scene) material(texture, overlay string) MaterialID {
	key := texture + "|" + overlay
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[key]; ok {
		return id
	}
	s.nextMaterial++
	id := s.nextMaterial
	s.materials[id] = &material{texture: texture, overlay: overlay}
	s.byKey[key] = id
	return id
}

// MaterialReady сообщает, загружен ли материал
func (s *Scene) MaterialReady(id MaterialID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	return ok && m.ready
}

// Pump завершает загрузку всех ожидающих материалов.
// Возвращает количество материалов, ставших готовыми.
func (s *Scene) Pump() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, m := range s.materials {
		if m.ready {
			continue
		}
		if s.assets != nil {
			img, err := s.composeLocked(m.texture, m.overlay)
			if err != nil {
				s.logger.Warn("Материал %s|%s загружен без изображения: %v", m.texture, m.overlay, err)
			}
			m.image = img
		}
		m.ready = true
		loaded++
	}
	return loaded
}

func (s *Scene) composeLocked(texture, overlay string) (image.Image, error) {
	base, err := s.textureLocked(texture)
	if err != nil || overlay == "" {
		return base, err
	}
	crack, err := s.textureLocked(overlay)
	if err != nil {
		return base, err
	}
	return Compose(base, crack), nil
}

func (s *Scene) textureLocked(key string) (image.Image, error) {
	if img, ok := s.textures[key]; ok {
		return img, nil
	}
	f, err := s.assets.Open(key)
	if err != nil {
		return nil, fmt.Errorf("текстура %s: %w", key, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("декодирование %s: %w", key, err)
	}
	s.textures[key] = img
	return img, nil
}

// MaterialImage возвращает изображение готового материала (nil без ассетов)
func (s *Scene) MaterialImage(id MaterialID) image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.materials[id]; ok {
		return m.image
	}
	return nil
}

// MaterialKey возвращает текстуру и оверлей материала
func (s *Scene) MaterialKey(id MaterialID) (texture, overlay string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return "", "", false
	}
	return m.texture, m.overlay, true
}

// Face возвращает описание грани
func (s *Scene) Face(id FaceID) (FaceSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.faces[id]
	return spec, ok
}

// FacesAt возвращает все грани блока
func (s *Scene) FacesAt(block vec.Vec3) []FaceSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []FaceSpec
	for _, spec := range s.faces {
		if spec.Block == block {
			out = append(out, spec)
		}
	}
	return out
}

// FaceCount количество отрисованных граней
func (s *Scene) FaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.faces)
}

// Counters возвращает количество созданных и удалённых граней за всё время
func (s *Scene) Counters() (spawned, despawned uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spawned, s.despawned
}
