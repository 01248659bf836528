// Package draw rasterizes game shapes into terminal cells.
package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// pixel is a packed color; zero means the pixel is not set.
type pixel uint32

const pixelSet pixel = 1 << 24

func packPixel(c RGB) pixel {
	return pixelSet | pixel(c.R)<<16 | pixel(c.G)<<8 | pixel(c.B)
}

func (p pixel) color() RGB {
	return RGB{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p)}
}

// Cell is one rendered terminal cell: a half-block glyph with its colors.
type Cell struct {
	Rune  rune
	FG    RGB
	BG    RGB
	HasBG bool // BG is only meaningful when both half-pixels are set with different colors
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int     // Canvas columns
	termHeight     int     // Canvas rows
	subPixelHeight int     // termHeight * 2
	pixels         []pixel // Flat slice: [y * termWidth + x]
	prev           []pixel // Pixels as of the last Render
	forceRedraw    bool

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset of the canvas inside the terminal (0-based columns/rows to skip).
	offsetCol int
	offsetRow int

	renderBuf []byte // Reused between frames
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the canvas dimensions in terminal cells.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new cell dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 1 {
		termWidth = 1
	}
	if termHeight < 1 {
		termHeight = 1
	}
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]pixel, subPixelHeight*termWidth)
		c.prev = make([]pixel, subPixelHeight*termWidth)
		c.forceRedraw = true
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// Fit sizes and centers the canvas inside a terminal of the given size,
// preserving the logical aspect ratio. One row is reserved at the top for the
// HUD and one cell on every side for the border.
func (c *Canvas) Fit(termWidth, termHeight int) {
	availCols := termWidth - 2
	availRows := termHeight - 3
	if availCols < 1 {
		availCols = 1
	}
	if availRows < 1 {
		availRows = 1
	}

	// Half-block pixels are roughly square, so one scale serves both axes.
	scale := math.Min(float64(availCols)/c.logicalWidth, float64(availRows*2)/c.logicalHeight)
	cols := min(int(math.Floor(c.logicalWidth*scale+1e-9)), availCols)
	rows := min(int(math.Ceil(c.logicalHeight*scale/2-1e-9)), availRows)
	cols = max(cols, 1)
	rows = max(rows, 1)
	c.Resize(cols, rows)

	offCol := (termWidth - cols) / 2
	offRow := 1 + (termHeight-1-rows)/2
	if offCol < 1 {
		offCol = 1
	}
	if offRow < 2 {
		offRow = 2
	}
	c.SetOffset(offCol, offRow)
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at canvas pixel coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col RGB) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = packPixel(col)
	}
}

// PixelAt returns the color of a pixel and whether it is set.
func (c *Canvas) PixelAt(x, y int) (RGB, bool) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return RGB{}, false
	}
	p := c.pixels[y*c.termWidth+x]
	return p.color(), p != 0
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64, col RGB) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	c.setPixel(px, py, col)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col RGB) {
	x1 := int(math.Floor(p1.X * c.scaleX))
	y1 := int(math.Floor(p1.Y * c.scaleY))
	x2 := int(math.Floor(p2.X * c.scaleX))
	y2 := int(math.Floor(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillCircle fills a circle given in logical coordinates. A circle too small
// to cover any pixel center still lights the pixel under its center.
func (c *Canvas) FillCircle(center Point, radius float64, col RGB) {
	cx := center.X * c.scaleX
	cy := center.Y * c.scaleY
	rx := radius * c.scaleX
	ry := radius * c.scaleY

	filled := false
	if rx > 0 && ry > 0 {
		for py := int(math.Floor(cy - ry)); py <= int(math.Ceil(cy+ry)); py++ {
			dy := (float64(py) + 0.5 - cy) / ry
			for px := int(math.Floor(cx - rx)); px <= int(math.Ceil(cx+rx)); px++ {
				dx := (float64(px) + 0.5 - cx) / rx
				if dx*dx+dy*dy <= 1 {
					c.setPixel(px, py, col)
					filled = true
				}
			}
		}
	}
	if !filled {
		c.setPixel(int(math.Floor(cx)), int(math.Floor(cy)), col)
	}
}

// Cells calls fn for every non-empty cell, row by row. col and row are
// 0-based canvas coordinates (offset not applied).
func (c *Canvas) Cells(fn func(col, row int, cell Cell)) {
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			if cell, ok := cellFor(c.pixels[topOffset+col], c.pixels[bottomOffset+col]); ok {
				fn(col, row, cell)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// cellFor builds the glyph for a pair of half-pixels. ok is false when both
// are empty.
func cellFor(top, bottom pixel) (cell Cell, ok bool) {
	switch {
	case top != 0 && bottom != 0 && top == bottom:
		return Cell{Rune: BlockFull, FG: top.color()}, true
	case top != 0 && bottom != 0:
		return Cell{Rune: BlockUpperHalf, FG: top.color(), BG: bottom.color(), HasBG: true}, true
	case top != 0:
		return Cell{Rune: BlockUpperHalf, FG: top.color()}, true
	case bottom != 0:
		return Cell{Rune: BlockLowerHalf, FG: bottom.color()}, true
	}
	return Cell{}, false
}

// ForceRedraw makes the next Render repaint every cell, not only the ones
// that changed. Call it after the terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Render outputs the canvas to the writer using colored half-block characters.
// Only cells that changed since the previous Render are written; cells that
// became empty are overwritten with a space.
func (c *Canvas) Render(w io.Writer) error {
	buf := c.renderBuf[:0]

	var lastFG, lastBG RGB
	fgSet, bgSet := false, false

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]
			if !c.forceRedraw && top == c.prev[topOffset+col] && bottom == c.prev[bottomOffset+col] {
				continue
			}

			buf = append(buf, "\033["...)
			buf = strconv.AppendInt(buf, int64(row+1+c.offsetRow), 10)
			buf = append(buf, ';')
			buf = strconv.AppendInt(buf, int64(col+1+c.offsetCol), 10)
			buf = append(buf, 'H')

			cell, ok := cellFor(top, bottom)
			if !ok {
				if bgSet {
					buf = append(buf, "\033[49m"...)
					bgSet = false
				}
				buf = append(buf, ' ')
				continue
			}

			if !fgSet || cell.FG != lastFG {
				buf = appendFG(buf, cell.FG)
				lastFG, fgSet = cell.FG, true
			}
			switch {
			case cell.HasBG && (!bgSet || cell.BG != lastBG):
				buf = appendBG(buf, cell.BG)
				lastBG, bgSet = cell.BG, true
			case !cell.HasBG && bgSet:
				buf = append(buf, "\033[49m"...)
				bgSet = false
			}
			buf = utf8.AppendRune(buf, cell.Rune)
		}
	}
	buf = append(buf, "\033[0m"...)
	c.renderBuf = buf
	copy(c.prev, c.pixels)
	c.forceRedraw = false

	// Write output in chunks for optimal network flow
	for len(buf) > 0 {
		chunk := buf
		if len(chunk) > maxChunkSize {
			chunk = buf[:maxChunkSize]
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		buf = buf[len(chunk):]
	}
	return nil
}

// RenderBorder draws a box border around the canvas area. Sides without room
// (zero offset) are skipped.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*6 + c.termHeight*2*16)

	line := strings.Repeat("─", c.termWidth)
	if hasV {
		if hasH {
			buf.WriteString(cursorTo(top, left) + "┌" + line + "┐")
			buf.WriteString(cursorTo(bottom, left) + "└" + line + "┘")
		} else {
			buf.WriteString(cursorTo(top, c.offsetCol+1) + line)
			buf.WriteString(cursorTo(bottom, c.offsetCol+1) + line)
		}
	}

	if hasH {
		for row := c.offsetRow + 1; row < bottom; row++ {
			buf.WriteString(cursorTo(row, left) + "│" + cursorTo(row, right) + "│")
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func cursorTo(row, col int) string {
	return "\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the canvas column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the canvas row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	return px + 1 + c.offsetCol, py/2 + 1 + c.offsetRow
}

// CellToLogical converts a 0-based terminal cell (as reported by mouse
// events) to the logical coordinates of that cell's center. Cells outside the
// canvas map to points outside the logical field.
func (c *Canvas) CellToLogical(col, row int) Point {
	px := float64(col-c.offsetCol) + 0.5
	py := float64(row-c.offsetRow)*2 + 1
	return Point{X: px / c.scaleX, Y: py / c.scaleY}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
