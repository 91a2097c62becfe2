package block

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// CrackStages количество текстур трещин
const CrackStages = 5

// TextureKey ключ текстуры грани: "<type>/<face>.png"
func TextureKey(t Type, dir vec.Direction) string {
	return fmt.Sprintf("%s/%s.png", t, dir.FaceName())
}

// CrackKey ключ текстуры трещин для стадии повреждения (1..CrackStages)
func CrackKey(stage int) string {
	if stage < 1 {
		stage = 1
	}
	if stage > CrackStages {
		stage = CrackStages
	}
	return fmt.Sprintf("cracks/crack_%d.png", stage)
}
