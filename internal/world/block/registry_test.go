package block

import (
	"encoding/json"
	"testing"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "air", Air.String())
	assert.Equal(t, "snowy_dirt", SnowyDirt.String())

	for _, typ := range append(All(), Air) {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseType("lava")
	assert.Error(t, err)
}

func TestTypeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Type{"a": Stone})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"stone"}`, string(data))

	var decoded map[string]Type
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Stone, decoded["a"])

	assert.Error(t, json.Unmarshal([]byte(`{"a":"lava"}`), &decoded))
}

func TestTextureKeys(t *testing.T) {
	assert.Equal(t, "grass/top.png", TextureKey(Grass, vec.Up))
	assert.Equal(t, "stone/back.png", TextureKey(Stone, vec.Back))
	assert.Equal(t, "cracks/crack_1.png", CrackKey(1))
	assert.Equal(t, "cracks/crack_5.png", CrackKey(9))
}

func TestBreakTimeFallback(t *testing.T) {
	assert.Greater(t, Stone.BreakTime(), Dirt.BreakTime())
	assert.Equal(t, Stone.BreakTime(), Type(200).BreakTime()*2)
}
