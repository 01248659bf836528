// Package tui is the tcell frontend used for local play.
package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tomz197/cannonade/internal/draw"
	"github.com/tomz197/cannonade/internal/game"
	"github.com/tomz197/cannonade/internal/input"
	"github.com/tomz197/cannonade/internal/loop"
	"github.com/tomz197/cannonade/internal/object"
	"gonum.org/v1/gonum/spatial/r2"
)

// Screen adapts a tcell.Screen to loop.Frontend.
type Screen struct {
	screen tcell.Screen
	canvas *draw.Canvas
	events chan tcell.Event

	buttonDown bool
	width      int
	height     int
}

// New wraps an initialized tcell screen. It enables mouse reporting and
// starts the event pump.
func New(screen tcell.Screen, logicalWidth, logicalHeight float64) *Screen {
	screen.EnableMouse()
	screen.HideCursor()

	s := &Screen{
		screen: screen,
		canvas: draw.NewScaledCanvas(1, 1, logicalWidth, logicalHeight),
		events: make(chan tcell.Event, 100),
	}
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(s.events)
				return
			}
			s.events <- ev
		}
	}()
	return s
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.DisableMouse()
	s.screen.Fini()
}

// Poll drains pending tcell events without blocking.
func (s *Screen) Poll(now time.Time) (loop.Frame, error) {
	var f loop.Frame
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				f.Quit = true
				return f, nil
			}
			s.handle(ev, now, &f)
		default:
			return f, nil
		}
	}
}

func (s *Screen) handle(ev tcell.Event, now time.Time, f *loop.Frame) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			f.Quit = true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			f.Quit = true
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		p := s.canvas.CellToLogical(x, y)
		f.Pointer = r2.Vec{X: p.X, Y: p.Y}
		f.HasPointer = true

		// tcell reports button state, not transitions.
		down := ev.Buttons()&tcell.Button1 != 0
		switch {
		case down && !s.buttonDown:
			f.Buttons = append(f.Buttons, input.Button{Action: input.MouseActionPress, At: now})
		case !down && s.buttonDown:
			f.Buttons = append(f.Buttons, input.Button{Action: input.MouseActionRelease, At: now})
		}
		s.buttonDown = down

	case *tcell.EventResize:
		s.screen.Sync()
	}
}

// Render blits the canvas into tcell cells and draws the HUD.
func (s *Screen) Render(view game.View, charge float64) error {
	if w, h := s.screen.Size(); w != s.width || h != s.height {
		s.width, s.height = w, h
		s.canvas.Fit(w, h)
	}

	s.screen.Clear()
	s.canvas.Clear()
	if err := view.Draw(object.DrawContext{Canvas: s.canvas}); err != nil {
		return err
	}

	offCol, offRow := s.canvas.OffsetCol(), s.canvas.OffsetRow()
	s.canvas.Cells(func(col, row int, c draw.Cell) {
		s.screen.SetContent(col+offCol, row+offRow, c.Rune, nil, cellStyle(c))
	})
	s.drawBorder()
	s.drawHUD(view, charge)

	s.screen.Show()
	return nil
}

func (s *Screen) drawBorder() {
	style := tcell.StyleDefault
	left := s.canvas.OffsetCol() - 1
	right := s.canvas.OffsetCol() + s.canvas.TerminalWidth()
	top := s.canvas.OffsetRow() - 1
	bottom := s.canvas.OffsetRow() + s.canvas.TerminalHeight()

	for x := left + 1; x < right; x++ {
		s.screen.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.screen.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	for y := top + 1; y < bottom; y++ {
		s.screen.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.screen.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	s.screen.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.screen.SetContent(right, top, tcell.RuneURCorner, nil, style)
	s.screen.SetContent(left, bottom, tcell.RuneLLCorner, nil, style)
	s.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}

func (s *Screen) drawHUD(view game.View, charge float64) {
	left := s.canvas.OffsetCol() - 1
	right := s.canvas.OffsetCol() + s.canvas.TerminalWidth()
	row := s.canvas.OffsetRow() - 2

	s.text(left, row, view.ScoreText(), color(draw.Red))
	clock := view.TimeText()
	s.text(right-len(clock)+1, row, clock, color(draw.Blue))
	if charge > 0 {
		power := fmt.Sprintf("Power %.0f", charge)
		s.text((left+right)/2-len(power)/2, row, power, color(draw.Magenta))
	}

	if view.State == game.StateGameOver {
		const banner = "GAME OVER"
		col, row := s.canvas.LogicalToTerminal(view.Bounds.Width/2, view.Bounds.Height/2)
		s.text(col-1-len(banner)/2, row-1, banner, tcell.ColorDefault)
	}
}

func (s *Screen) text(x, y int, str string, fg tcell.Color) {
	style := tcell.StyleDefault.Foreground(fg)
	for i, r := range []rune(str) {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}

func color(c draw.RGB) tcell.Color {
	if c.IsBlack() {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func cellStyle(c draw.Cell) tcell.Style {
	style := tcell.StyleDefault.Foreground(color(c.FG))
	if c.HasBG {
		style = style.Background(color(c.BG))
	}
	return style
}

var _ loop.Frontend = (*Screen)(nil)
