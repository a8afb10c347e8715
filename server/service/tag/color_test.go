package tag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomColorPickerStaysInPalette(t *testing.T) {
	picker := NewRandomColorPicker()
	palette := make(map[string]struct{}, len(Palette))
	for _, color := range Palette {
		palette[color] = struct{}{}
	}
	for i := 0; i < 100; i++ {
		_, ok := palette[picker.Pick()]
		require.True(t, ok)
	}
}

func TestSeededColorPickerIsReproducible(t *testing.T) {
	a := NewSeededColorPicker(42)
	b := NewSeededColorPicker(42)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Pick(), b.Pick())
	}
}
