package draw

import "strconv"

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Palette colors used by game objects.
var (
	Black   = RGB{0, 0, 0}
	White   = RGB{255, 255, 255}
	Green   = RGB{0, 255, 0}
	Red     = RGB{255, 0, 0}
	Blue    = RGB{0, 0, 255}
	Cyan    = RGB{0, 255, 255}
	Yellow  = RGB{255, 255, 0}
	Magenta = RGB{255, 0, 255}
)

// IsBlack reports whether the color is pure black. Black renders with the
// terminal's default foreground so it stays visible on dark backgrounds.
func (c RGB) IsBlack() bool {
	return c == Black
}

// appendFG appends the SGR sequence selecting c as foreground color.
func appendFG(buf []byte, c RGB) []byte {
	if c.IsBlack() {
		return append(buf, "\033[39m"...)
	}
	buf = append(buf, "\033[38;2;"...)
	return appendRGB(buf, c)
}

// appendBG appends the SGR sequence selecting c as background color.
func appendBG(buf []byte, c RGB) []byte {
	if c.IsBlack() {
		return append(buf, "\033[49m"...)
	}
	buf = append(buf, "\033[48;2;"...)
	return appendRGB(buf, c)
}

func appendRGB(buf []byte, c RGB) []byte {
	buf = strconv.AppendUint(buf, uint64(c.R), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c.G), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c.B), 10)
	return append(buf, 'm')
}

// FG returns the SGR sequence selecting c as foreground color.
func FG(c RGB) string {
	var b [24]byte
	return string(appendFG(b[:0], c))
}
