package tag

import (
	"math/rand"
	"sync"
	"time"
)

// Palette is the fixed set of colors assigned to tags created without an
// explicit color.
var Palette = []string{
	"#4263eb", "#7950f2", "#be4bdb", "#e64980", "#fa5252",
	"#fd7e14", "#fab005", "#40c057", "#15aabf", "#228be6",
}

// ColorPicker selects a display color for a new tag. It is injected so tests
// can pin the choice.
type ColorPicker interface {
	Pick() string
}

// RandomColorPicker picks pseudo-randomly from the palette.
type RandomColorPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomColorPicker creates a picker seeded with the current time.
func NewRandomColorPicker() *RandomColorPicker {
	return NewSeededColorPicker(time.Now().UnixNano())
}

// NewSeededColorPicker creates a picker with a fixed seed for reproducible
// sequences.
func NewSeededColorPicker(seed int64) *RandomColorPicker {
	return &RandomColorPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomColorPicker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Palette[p.rng.Intn(len(Palette))]
}
