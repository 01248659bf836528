package object

import (
	"github.com/tomz197/cannonade/internal/draw"
)

// Text is a colored label. X and Y are relative to the writer's origin,
// so (1, 1) is the first canvas cell and row 0 is the border above it.
type Text struct {
	X     int
	Y     int
	Value string
	Color draw.RGB
}

// Draw writes the label and resets the color after it.
func (t Text) Draw(w *draw.ChunkWriter) {
	if t.Value == "" {
		return
	}
	w.WriteAt(t.X, t.Y, draw.FG(t.Color)+t.Value+"\033[0m")
}
