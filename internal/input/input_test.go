package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/cannonade/internal/config"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func feed(d *Decoder, s string) Frame {
	var f Frame
	d.Feed([]byte(s), t0, &f)
	return f
}

func TestDecoder_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		quit bool
	}{
		{"q", "q", true},
		{"Q", "Q", true},
		{"ctrl-c", "\x03", true},
		{"esc then key", "\x1bx", true},
		{"other keys", "abc 1", false},
		{"arrow key", "\x1b[A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			if got := feed(&d, tt.in).Quit; got != tt.quit {
				t.Errorf("Quit = %v, want %v", got, tt.quit)
			}
		})
	}
}

func feedAt(d *Decoder, s string, at time.Time) Frame {
	var f Frame
	d.Feed([]byte(s), at, &f)
	return f
}

func TestDecoder_LoneEscapeQuitsAfterTimeout(t *testing.T) {
	var d Decoder
	if f := feedAt(&d, "\x1b", t0); f.Quit {
		t.Fatal("lone ESC quit immediately")
	}
	if f := feedAt(&d, "", t0.Add(16*time.Millisecond)); f.Quit {
		t.Fatal("lone ESC quit before the timeout")
	}
	if f := feedAt(&d, "", t0.Add(escapeTimeout)); !f.Quit {
		t.Fatal("lone ESC never quit")
	}
}

func TestDecoder_PartialReportSurvivesIdleFrames(t *testing.T) {
	var d Decoder
	feedAt(&d, "\x1b[<0;1", t0)
	for i := 1; i <= 20; i++ {
		if f := feedAt(&d, "", t0.Add(time.Duration(i)*16*time.Millisecond)); f.Quit {
			t.Fatalf("idle frame %d quit with a partial report pending", i)
		}
	}
	f := feedAt(&d, "2;8M", t0.Add(time.Second))
	if f.Quit || !f.HasPointer || f.Pointer != (Cell{11, 7}) {
		t.Fatalf("frame = %+v, want pointer {11 7}", f)
	}
	if len(f.Buttons) != 1 || f.Buttons[0].Action != MouseActionPress {
		t.Fatalf("buttons = %+v", f.Buttons)
	}
}

func TestDecoder_SlowEscapeTail(t *testing.T) {
	var d Decoder
	feedAt(&d, "\x1b", t0)
	if f := feedAt(&d, "", t0.Add(20*time.Millisecond)); f.Quit {
		t.Fatal("quit while the tail was still in flight")
	}
	f := feedAt(&d, "[<35;3;4M", t0.Add(40*time.Millisecond))
	if f.Quit || !f.HasPointer || f.Pointer != (Cell{2, 3}) {
		t.Fatalf("frame = %+v, want pointer {2 3}", f)
	}
}

func TestDecoder_SGRMouse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		pointer Cell
		buttons []MouseAction
	}{
		{"motion no button", "\x1b[<35;11;6M", Cell{10, 5}, nil},
		{"left press", "\x1b[<0;1;1M", Cell{0, 0}, []MouseAction{MouseActionPress}},
		{"left release", "\x1b[<0;40;20m", Cell{39, 19}, []MouseAction{MouseActionRelease}},
		{"left drag", "\x1b[<32;5;7M", Cell{4, 6}, nil},
		{"right press ignored", "\x1b[<2;3;3M", Cell{2, 2}, nil},
		{"wheel ignored", "\x1b[<64;3;4M", Cell{2, 3}, nil},
		{
			"press then release",
			"\x1b[<0;2;2M\x1b[<0;3;3m",
			Cell{2, 2},
			[]MouseAction{MouseActionPress, MouseActionRelease},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			f := feed(&d, tt.in)
			if !f.HasPointer || f.Pointer != tt.pointer {
				t.Errorf("pointer = %+v (has=%v), want %+v", f.Pointer, f.HasPointer, tt.pointer)
			}
			if len(f.Buttons) != len(tt.buttons) {
				t.Fatalf("got %d buttons, want %d", len(f.Buttons), len(tt.buttons))
			}
			for i, b := range f.Buttons {
				if b.Action != tt.buttons[i] {
					t.Errorf("button %d = %v, want %v", i, b.Action, tt.buttons[i])
				}
				if !b.At.Equal(t0) {
					t.Errorf("button %d stamped %v", i, b.At)
				}
			}
			if f.Quit {
				t.Error("mouse report treated as quit")
			}
		})
	}
}

func TestDecoder_SplitSequence(t *testing.T) {
	var d Decoder
	f := feed(&d, "\x1b[<0;1")
	if f.HasPointer || f.Quit {
		t.Fatalf("partial report decoded early: %+v", f)
	}
	f = feed(&d, "2;8M")
	if !f.HasPointer || f.Pointer != (Cell{11, 7}) {
		t.Fatalf("pointer = %+v, want {11 7}", f.Pointer)
	}
	if len(f.Buttons) != 1 || f.Buttons[0].Action != MouseActionPress {
		t.Fatalf("buttons = %+v", f.Buttons)
	}
}

func TestParseSGRParams_Rejects(t *testing.T) {
	for _, in := range []string{"", "1;2", "1;2;3;4", "a;1;1", "1;99999;1"} {
		if _, _, _, ok := parseSGRParams([]byte(in)); ok {
			t.Errorf("parseSGRParams(%q) accepted", in)
		}
	}
}

func TestStream_QuitOnEOF(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("")))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Read(t0).Quit {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("stream never reported quit after EOF")
}

func TestStream_DeliversMouse(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("\x1b[<35;21;11M")))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f := s.Read(t0)
		if f.HasPointer {
			if f.Pointer != (Cell{20, 10}) {
				t.Fatalf("pointer = %+v", f.Pointer)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pointer never delivered")
}

func chargeCfg() config.ChargeConfig {
	return config.Default().Charge
}

func TestPower(t *testing.T) {
	tests := []struct {
		held time.Duration
		want float64
	}{
		{0, 400},
		{-time.Second, 400},
		{105 * time.Millisecond, 500},
		{505 * time.Millisecond, 900},
		{1095 * time.Millisecond, 1490},
		{1100 * time.Millisecond, 1500},
		{10 * time.Second, 1500},
	}

	for _, tt := range tests {
		if got := Power(tt.held, chargeCfg()); got != tt.want {
			t.Errorf("Power(%v) = %v, want %v", tt.held, got, tt.want)
		}
	}
}

func TestPower_Monotonic(t *testing.T) {
	prev := Power(0, chargeCfg())
	for d := time.Duration(0); d <= 2*time.Second; d += 3 * time.Millisecond {
		p := Power(d, chargeCfg())
		if p < prev {
			t.Fatalf("Power(%v) = %v < %v", d, p, prev)
		}
		if p < 400 || p > 1500 {
			t.Fatalf("Power(%v) = %v out of range", d, p)
		}
		prev = p
	}
}

func TestCharge(t *testing.T) {
	c := NewCharge(chargeCfg())

	if _, ok := c.Release(t0); ok {
		t.Fatal("release without press fired")
	}

	c.Press(t0)
	c.Press(t0.Add(300 * time.Millisecond)) // restart
	if !c.Holding() {
		t.Fatal("not holding after press")
	}
	if got := c.Preview(t0.Add(405 * time.Millisecond)); got != 500 {
		t.Errorf("Preview = %v, want 500", got)
	}

	p, ok := c.Release(t0.Add(405 * time.Millisecond))
	if !ok || p != 500 {
		t.Fatalf("Release = %v,%v, want 500,true", p, ok)
	}
	if _, ok := c.Release(t0.Add(time.Second)); ok {
		t.Fatal("second release fired")
	}
}

func TestCharge_Apply(t *testing.T) {
	c := NewCharge(chargeCfg())
	p, ok := c.Apply([]Button{
		{Action: MouseActionRelease, At: t0},
		{Action: MouseActionPress, At: t0},
		{Action: MouseActionRelease, At: t0.Add(505 * time.Millisecond)},
	})
	if !ok || p != 900 {
		t.Fatalf("Apply = %v,%v, want 900,true", p, ok)
	}
}
