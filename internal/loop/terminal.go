package loop

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/game"
	"github.com/tomz197/cannonade/internal/input"
	"github.com/tomz197/cannonade/internal/object"
	"gonum.org/v1/gonum/spatial/r2"
)

// Terminal is a Frontend that speaks raw ANSI over any byte stream: a local
// TTY in raw mode or an SSH channel.
type Terminal struct {
	writer       io.Writer
	chunkWriter  *draw.ChunkWriter // Accumulates a whole frame for chunked output
	canvas       *draw.Canvas
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc

	termWidth  int
	termHeight int
	gameOver   bool // GAME OVER banner already painted
}

// NewTerminal creates a terminal frontend for a play field of the given
// logical size. A nil sizeFunc reads the size of os.Stdout.
func NewTerminal(r *bufio.Reader, w io.Writer, sizeFunc draw.TermSizeFunc, logicalWidth, logicalHeight float64) *Terminal {
	if sizeFunc == nil {
		sizeFunc = draw.DefaultTermSizeFunc
	}
	return &Terminal{
		writer:       w,
		chunkWriter:  draw.NewChunkWriter(w, 0, 0),
		canvas:       draw.NewScaledCanvas(1, 1, logicalWidth, logicalHeight),
		inputStream:  input.StartStream(r),
		termSizeFunc: sizeFunc,
	}
}

// Open prepares the terminal: hides the cursor, clears the screen and turns
// on mouse reporting.
func (t *Terminal) Open() {
	draw.HideCursor(t.writer)
	draw.ClearScreen(t.writer)
	draw.EnableMouse(t.writer)
}

// Close undoes Open.
func (t *Terminal) Close() {
	draw.DisableMouse(t.writer)
	draw.ResetColors(t.writer)
	draw.ClearScreen(t.writer)
	draw.ShowCursor(t.writer)
}

// Poll drains pending input and maps the pointer onto the play field.
func (t *Terminal) Poll(now time.Time) (Frame, error) {
	in := t.inputStream.Read(now)
	f := Frame{Quit: in.Quit, Buttons: in.Buttons}
	if in.HasPointer {
		p := t.canvas.CellToLogical(in.Pointer.Col, in.Pointer.Row)
		f.Pointer = r2.Vec{X: p.X, Y: p.Y}
		f.HasPointer = true
	}
	return f, nil
}

// updateScreen handles terminal resize. On actual size changes it clears
// the terminal to remove residual pixels outside the new canvas area.
func (t *Terminal) updateScreen() {
	w, h, err := t.termSizeFunc()
	if err != nil || (w == t.termWidth && h == t.termHeight) {
		return
	}
	t.termWidth, t.termHeight = w, h
	draw.ClearScreen(t.chunkWriter)
	t.canvas.Fit(w, h)
	t.chunkWriter.SetOffset(t.canvas.OffsetCol(), t.canvas.OffsetRow())
	t.canvas.ForceRedraw()
	t.gameOver = false
}

// Render draws the play field, border and HUD, then flushes the frame.
func (t *Terminal) Render(view game.View, charge float64) error {
	t.updateScreen()

	t.canvas.Clear()
	ctx := object.DrawContext{Canvas: t.canvas}
	if err := view.Draw(ctx); err != nil {
		return err
	}
	if err := t.canvas.Render(t.chunkWriter); err != nil {
		return err
	}
	if err := t.canvas.RenderBorder(t.chunkWriter); err != nil {
		return err
	}
	t.drawHUD(view, charge)
	return t.chunkWriter.Flush()
}

// hudWidth pads HUD fields so shrinking values don't leave residual
// characters on screen (we don't clear every frame).
const hudWidth = 12

// drawHUD draws the score, clock and charge on the row above the field,
// and the GAME OVER banner once the match ended. Positions are relative to
// the canvas origin set in updateScreen.
func (t *Terminal) drawHUD(view game.View, charge float64) {
	left, right := 0, t.canvas.TerminalWidth()+1
	const row = -1

	power := strings.Repeat(" ", hudWidth)
	if charge > 0 {
		power = fmt.Sprintf("%-*s", hudWidth, fmt.Sprintf("Power %.0f", charge))
	}
	labels := []object.Text{
		{X: left, Y: row, Value: fmt.Sprintf("%-*s", hudWidth, view.ScoreText()), Color: draw.Red},
		{X: right - hudWidth + 1, Y: row, Value: fmt.Sprintf("%*s", hudWidth, view.TimeText()), Color: draw.Blue},
		{X: (left+right)/2 - hudWidth/2, Y: row, Value: power, Color: draw.Magenta},
	}
	for _, txt := range labels {
		txt.Draw(t.chunkWriter)
	}

	if view.State == game.StateGameOver && !t.gameOver {
		const banner = "GAME OVER"
		col, row := t.canvas.LogicalToTerminal(view.Bounds.Width/2, view.Bounds.Height/2)
		col, row = col-t.canvas.OffsetCol(), row-t.canvas.OffsetRow()
		object.Text{X: col - len(banner)/2, Y: row, Value: banner, Color: draw.Black}.Draw(t.chunkWriter)
		t.gameOver = true
	}
}
