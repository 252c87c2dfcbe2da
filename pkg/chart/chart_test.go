package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesDecodablePNG(t *testing.T) {
	columns := []SlotColumn{
		{Label: "18:00", Voters: []string{"Max", "Lewis", "Charles"}},
		{Label: "19:00", Voters: []string{"Max"}},
		{Label: "20:00"},
	}

	data, err := Render("Montag", columns, 3)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 310, bounds.Dx())
	assert.Greater(t, bounds.Dy(), 0)
}

func TestRenderGrowsWithDeepestColumn(t *testing.T) {
	shallow, err := Render("Montag", []SlotColumn{{Label: "18:00", Voters: []string{"a"}}}, 1)
	require.NoError(t, err)
	deep, err := Render("Montag", []SlotColumn{{Label: "18:00", Voters: []string{"a", "b", "c", "d", "e"}}}, 1)
	require.NoError(t, err)

	shallowImg, err := png.Decode(bytes.NewReader(shallow))
	require.NoError(t, err)
	deepImg, err := png.Decode(bytes.NewReader(deep))
	require.NoError(t, err)
	assert.Greater(t, deepImg.Bounds().Dy(), shallowImg.Bounds().Dy())
}

func TestRenderRejectsEmptyColumns(t *testing.T) {
	_, err := Render("Montag", nil, 3)
	assert.Error(t, err)
}
