package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// ChunkWriter collects one frame of terminal output and sends it in
// maxChunkSize pieces, which keeps SSH packets small. Positioned text is
// placed relative to an origin, normally the cell just outside the canvas'
// top-left corner, so HUD code does not have to know where the canvas sits.
type ChunkWriter struct {
	frame     []byte
	out       *bufio.Writer
	originCol int
	originRow int
}

// NewChunkWriter creates a ChunkWriter on w with the given origin.
func NewChunkWriter(w io.Writer, originCol, originRow int) *ChunkWriter {
	return &ChunkWriter{
		out:       bufio.NewWriterSize(w, 8192),
		originCol: originCol,
		originRow: originRow,
	}
}

// SetOffset moves the origin, e.g. after the canvas was refitted.
func (cw *ChunkWriter) SetOffset(originCol, originRow int) {
	cw.originCol = originCol
	cw.originRow = originRow
}

// MoveCursor positions the cursor at (col, row) relative to the origin.
// Positions that would fall off the top-left of the screen are clamped.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.frame = append(cw.frame, "\033["...)
	cw.frame = strconv.AppendInt(cw.frame, int64(max(row+cw.originRow, 1)), 10)
	cw.frame = append(cw.frame, ';')
	cw.frame = strconv.AppendInt(cw.frame, int64(max(col+cw.originCol, 1)), 10)
	cw.frame = append(cw.frame, 'H')
}

// Write appends raw bytes; Canvas.Render writes absolute positions this way.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.frame = append(cw.frame, p...)
	return len(p), nil
}

// WriteString appends raw text.
func (cw *ChunkWriter) WriteString(s string) {
	cw.frame = append(cw.frame, s...)
}

// WriteAt places s at (col, row) relative to the origin.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame = append(cw.frame, s...)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the frame and starts a new one.
func (cw *ChunkWriter) Flush() error {
	for data := cw.frame; len(data) > 0; {
		n := min(len(data), maxChunkSize)
		if _, err := cw.out.Write(data[:n]); err != nil {
			cw.frame = cw.frame[:0]
			return err
		}
		data = data[n:]
	}
	cw.frame = cw.frame[:0]
	return cw.out.Flush()
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the TTY behind os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
	seqReset      = "\033[0m"
)

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

// HideCursor hides the cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, seqHideCursor)
}

// ShowCursor shows the cursor.
func ShowCursor(w io.Writer) {
	io.WriteString(w, seqShowCursor)
}

// Mouse reporting modes, enabled in this order and disabled in reverse:
// SGR extended coordinates, button press/release, drag, any motion.
var mouseModes = []string{"1006", "1000", "1002", "1003"}

// EnableMouse turns on SGR mouse reporting with motion tracking so the
// pointer position arrives even while no button is held.
func EnableMouse(w io.Writer) {
	var b []byte
	for _, m := range mouseModes {
		b = append(b, "\033[?"+m+"h"...)
	}
	w.Write(b)
}

// DisableMouse undoes EnableMouse.
func DisableMouse(w io.Writer) {
	var b []byte
	for i := len(mouseModes) - 1; i >= 0; i-- {
		b = append(b, "\033[?"+mouseModes[i]+"l"...)
	}
	w.Write(b)
}

// ResetColors restores default terminal colors and attributes.
func ResetColors(w io.Writer) {
	io.WriteString(w, seqReset)
}
