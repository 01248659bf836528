// Package input decodes the terminal byte stream into per-frame pointer,
// button and quit state, and maps button hold time to firing power.
package input

import (
	"bufio"
	"time"
)

// MouseAction is the kind of a button transition.
type MouseAction uint8

const (
	MouseActionPress MouseAction = iota
	MouseActionRelease
)

// Cell is a 0-based terminal cell position.
type Cell struct {
	Col, Row int
}

// Button is one primary-button transition observed during a frame.
type Button struct {
	Action MouseAction
	At     time.Time
}

// Frame represents the current frame's input state.
type Frame struct {
	Quit bool

	// Pointer is the last reported mouse position, valid when HasPointer is set.
	Pointer    Cell
	HasPointer bool

	Buttons []Button
}

// Stream delivers input bytes via a channel and decodes them frame by frame.
type Stream struct {
	ch     chan byte
	closed bool
	dec    Decoder
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The stream reports Quit once r is exhausted.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains all available bytes from the stream (non-blocking) and decodes
// them. Button transitions are stamped with now.
func (s *Stream) Read(now time.Time) Frame {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	var f Frame
	s.dec.Feed(buf, now, &f)
	if s.closed {
		f.Quit = true
	}
	return f
}

// Decoder turns raw terminal bytes into Frame updates. It keeps an
// incomplete escape sequence across calls.
type Decoder struct {
	pending []byte
	escAt   time.Time // When a lone pending ESC arrived
}

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// escapeTimeout is how long a lone ESC waits for the rest of a sequence
// before it counts as the escape key.
const escapeTimeout = 50 * time.Millisecond

// Feed decodes data into f. A lone ESC is held back until escapeTimeout
// passes without more bytes, then it is a quit. Longer partial sequences
// wait for their tail; parseCSI bounds them at maxCSILen.
func (d *Decoder) Feed(data []byte, now time.Time, f *Frame) {
	if len(data) == 0 {
		if len(d.pending) == 1 && d.pending[0] == keyEsc && now.Sub(d.escAt) >= escapeTimeout {
			f.Quit = true
			d.pending = d.pending[:0]
		}
		return
	}

	buf := append(d.pending, data...)
	d.pending = nil

	for i := 0; i < len(buf); {
		b := buf[i]
		if b != keyEsc {
			applyKey(f, b)
			i++
			continue
		}

		rest := buf[i:]
		if len(rest) == 1 {
			d.pending = append(d.pending[:0], rest...)
			d.escAt = now
			return
		}
		if rest[1] != '[' {
			// ESC followed by a plain key: the escape key itself.
			f.Quit = true
			i++
			continue
		}
		n, complete := parseCSI(rest, now, f)
		if !complete {
			d.pending = append(d.pending[:0], rest...)
			return
		}
		i += n
	}
}

func applyKey(f *Frame, b byte) {
	switch b {
	case 'q', 'Q', keyCtrlC:
		f.Quit = true
	}
}

// maxCSILen bounds how far we scan for a terminator before giving up.
const maxCSILen = 32

// parseCSI handles a sequence starting with ESC [. It returns the number of
// bytes consumed and false when the sequence is still incomplete.
func parseCSI(data []byte, now time.Time, f *Frame) (int, bool) {
	if len(data) < 3 {
		return 0, false
	}
	if data[2] == '<' {
		return parseSGRMouse(data, now, f)
	}

	// Other CSI sequences (arrows, function keys) are consumed and ignored.
	for end := 2; end < len(data) && end < maxCSILen; end++ {
		b := data[end]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			return end + 1, true
		}
		if b < 0x20 || b > 0x7e {
			return end, true
		}
	}
	if len(data) >= maxCSILen {
		return maxCSILen, true
	}
	return 0, false
}

// parseSGRMouse parses ESC [ < Btn ; X ; Y (M|m). M is a press or motion,
// m a release. Coordinates are 1-based on the wire.
func parseSGRMouse(data []byte, now time.Time, f *Frame) (int, bool) {
	end := 3
	for end < len(data) && end < maxCSILen {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) {
		if end >= maxCSILen {
			return end, true
		}
		return 0, false
	}
	if data[end] != 'M' && data[end] != 'm' {
		// Garbage inside the report; drop what we scanned.
		return end, true
	}

	btn, x, y, ok := parseSGRParams(data[3:end])
	if !ok {
		return end + 1, true
	}

	f.Pointer = Cell{Col: x - 1, Row: y - 1}
	f.HasPointer = true

	// Bits 0-1: button (0=left, 3=none), bit 5: motion, bit 6: wheel.
	buttonID := btn & 0x03
	isMotion := btn&32 != 0
	isScroll := btn&64 != 0
	if isScroll || isMotion || buttonID != 0 {
		return end + 1, true
	}

	action := MouseActionPress
	if data[end] == 'm' {
		action = MouseActionRelease
	}
	f.Buttons = append(f.Buttons, Button{Action: action, At: now})
	return end + 1, true
}

// parseSGRParams extracts btn, x, y from "Btn;X;Y" format.
func parseSGRParams(data []byte) (btn, x, y int, ok bool) {
	state := 0 // 0=btn, 1=x, 2=y
	val := 0

	for _, b := range data {
		if b == ';' {
			switch state {
			case 0:
				btn = val
			case 1:
				x = val
			}
			state++
			val = 0
			if state > 2 {
				return 0, 0, 0, false
			}
		} else if b >= '0' && b <= '9' {
			val = val*10 + int(b-'0')
			if val > 9999 {
				return 0, 0, 0, false
			}
		} else {
			return 0, 0, 0, false
		}
	}

	if state != 2 {
		return 0, 0, 0, false
	}
	y = val
	return btn, x, y, true
}
