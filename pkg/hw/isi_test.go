package hw

import (
	"testing"

	"github.com/sensecam/capture/pkg/logger"
)

type memBus struct {
	regs   map[uint32]uint32
	writes []busWrite
}

type busWrite struct {
	off, val uint32
}

func newMemBus() *memBus { return &memBus{regs: make(map[uint32]uint32)} }

func (b *memBus) Read32(off uint32) uint32 { return b.regs[off] }

func (b *memBus) Write32(off uint32, val uint32) {
	b.regs[off] = val
	b.writes = append(b.writes, busWrite{off, val})
}

func (b *memBus) lastWrite(off uint32) (uint32, bool) {
	for i := len(b.writes) - 1; i >= 0; i-- {
		if b.writes[i].off == off {
			return b.writes[i].val, true
		}
	}
	return 0, false
}

type sinkRec struct {
	frames    int
	completed []Wait
}

func (s *sinkRec) FrameDone()          { s.frames++ }
func (s *sinkRec) Completed(kind Wait) { s.completed = append(s.completed, kind) }

func TestISIInitialize(t *testing.T) {
	tests := []struct {
		name string
		t    Timing
		want uint32
	}{
		{
			name: "defaults",
			t:    Timing{},
			want: isiCfg1ThmaskBeats16 | isiCfg1Discr,
		},
		{
			name: "all polarity flags",
			t:    Timing{HsyncActiveLow: true, VsyncActiveLow: true, PclkSampleFalling: true},
			want: isiCfg1HsyncPolActiveLow | isiCfg1VsyncPolActiveLow |
				isiCfg1PixclkPolActiveFall | isiCfg1ThmaskBeats16 | isiCfg1Discr,
		},
		{
			name: "full mode with embedded sync and frate",
			t:    Timing{EmbSync: true, FullMode: true, FrateDiv: 2 << 8},
			want: isiCfg1EmbSync | isiCfg1FullMode | 2<<8 |
				isiCfg1ThmaskBeats16 | isiCfg1Discr,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := newMemBus()
			// stale pending interrupt must be cleared by a status read
			bus.regs[isiStatus] = isiSrCxfrDone
			ops := newISI(bus, test.t, logger.Default())
			ops.Initialize()

			if got, ok := bus.lastWrite(isiCfg1); !ok || got != test.want {
				t.Errorf("cfg1 = %#x, want %#x", got, test.want)
			}
			if got, _ := bus.lastWrite(isiIntdis); got != ^uint32(0) {
				t.Errorf("interrupts not fully masked, intdis = %#x", got)
			}
			if got, _ := bus.lastWrite(isiCtrl); got != isiCtrlDis {
				t.Errorf("ctrl = %#x, want disable", got)
			}
		})
	}
}

func TestISIConfigureGeometry(t *testing.T) {
	bus := newMemBus()
	ops := newISI(bus, Timing{}, logger.Default())

	ops.ConfigureGeometry(640, 480, Format{Fourcc: FourccYUYV, Code: CodeUYVY8})

	cfg2, ok := bus.lastWrite(isiCfg2)
	if !ok {
		t.Fatal("cfg2 not written")
	}
	if w := (cfg2 & isiCfg2IMHsizeMask) >> isiCfg2IMHsizeOffset; w != 639 {
		t.Errorf("hsize = %d, want 639", w)
	}
	if h := (cfg2 & isiCfg2IMVsizeMask) >> isiCfg2IMVsizeOffset; h != 479 {
		t.Errorf("vsize = %d, want 479", h)
	}
	if cfg2&(3<<28) != isiCfg2YccSwapMode2 {
		t.Errorf("ycc swap = %#x, want mode 2", cfg2&(3<<28))
	}
	if ops.previewPath {
		t.Error("YUV output must use the codec path")
	}

	ops.ConfigureGeometry(640, 480, Format{Fourcc: FourccRGB565, Code: CodeYUYV8})
	if !ops.previewPath {
		t.Error("RGB output must use the preview path")
	}
}

func TestISIYuvSwap(t *testing.T) {
	tests := []struct {
		f    Format
		want uint32
	}{
		{Format{FourccYUYV, CodeYUYV8}, isiCfg2YccSwapDefault},
		{Format{FourccYUYV, CodeVYUY8}, isiCfg2YccSwapMode3},
		{Format{FourccYUYV, CodeUYVY8}, isiCfg2YccSwapMode2},
		{Format{FourccYUYV, CodeYVYU8}, isiCfg2YccSwapMode1},
		{Format{FourccRGB565, CodeVYUY8}, isiCfg2YccSwapMode1},
		{Format{FourccRGB565, CodeYUYV8}, isiCfg2YccSwapMode2},
		{Format{FourccRGB565, CodeYVYU8}, isiCfg2YccSwapMode3},
		{Format{FourccUYVY, CodeUYVY8}, isiCfg2YccSwapDefault},
	}

	ops := newISI(newMemBus(), Timing{}, logger.Default())
	for _, test := range tests {
		if got := ops.yuvSwap(test.f); got != test.want {
			t.Errorf("yuvSwap(%s, code %d) = %#x, want %#x",
				test.f.Fourcc, test.f.Code, got, test.want)
		}
	}
}

func TestISIStartDMA(t *testing.T) {
	bus := newMemBus()
	ops := newISI(bus, Timing{}, logger.Default())
	d := &Descriptor{Phys: 0x0100_0040}

	ops.StartDMA(d, true)

	if got, _ := bus.lastWrite(isiInten); got != isiSrCxfrDone|isiSrPxfrDone {
		t.Errorf("inten = %#x, want frame-done bits", got)
	}
	if got, _ := bus.lastWrite(isiDmaCDscr); got != d.Phys {
		t.Errorf("codec dscr = %#x, want %#x", got, d.Phys)
	}
	if got, _ := bus.lastWrite(isiDmaCher); got != isiDmaChsrCCh {
		t.Errorf("cher = %#x, want codec channel", got)
	}
	if got, _ := bus.lastWrite(isiCtrl); got != isiCtrlEn|isiCtrlCdc {
		t.Errorf("ctrl = %#x, want enable|cdc", got)
	}

	// re-arm mid-stream leaves the interrupt mask alone
	bus.writes = nil
	ops.StartDMA(d, false)
	if _, ok := bus.lastWrite(isiInten); ok {
		t.Error("re-arm must not touch inten")
	}

	// preview path programs the P channel
	ops.ConfigureGeometry(320, 240, Format{Fourcc: FourccRGB565, Code: CodeUYVY8})
	bus.writes = nil
	ops.StartDMA(d, false)
	if got, _ := bus.lastWrite(isiDmaPDscr); got != d.Phys {
		t.Errorf("preview dscr = %#x, want %#x", got, d.Phys)
	}
	if got, _ := bus.lastWrite(isiCtrl); got != isiCtrlEn {
		t.Errorf("ctrl = %#x, want enable without cdc", got)
	}
}

func TestISIEnableInterrupt(t *testing.T) {
	bus := newMemBus()
	ops := newISI(bus, Timing{}, logger.Default())

	ops.EnableInterrupt(AwaitReset)
	if got, _ := bus.lastWrite(isiInten); got != isiCtrlSrst {
		t.Errorf("inten = %#x, want srst", got)
	}
	if got, _ := bus.lastWrite(isiCtrl); got != isiCtrlSrst {
		t.Errorf("ctrl = %#x, want srst", got)
	}

	ops.EnableInterrupt(AwaitDisable)
	if got, _ := bus.lastWrite(isiCtrl); got != isiCtrlDis {
		t.Errorf("ctrl = %#x, want dis", got)
	}
}

func TestISIInterrupt(t *testing.T) {
	tests := []struct {
		name    string
		status  uint32
		mask    uint32
		handled bool
		frames  int
		acks    int
	}{
		{"reset ack", isiCtrlSrst, isiCtrlSrst, true, 0, 1},
		{"disable ack", isiCtrlDis, isiCtrlDis, true, 0, 1},
		{"codec frame done", isiSrCxfrDone, isiSrCxfrDone | isiSrPxfrDone, true, 1, 0},
		{"preview frame done", isiSrPxfrDone, isiSrCxfrDone | isiSrPxfrDone, true, 1, 0},
		{"masked event", isiSrCxfrDone, 0, false, 0, 0},
		{"nothing pending", 0, ^uint32(0), false, 0, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := newMemBus()
			bus.regs[isiStatus] = test.status
			bus.regs[isiIntmask] = test.mask
			ops := newISI(bus, Timing{}, logger.Default())
			sink := &sinkRec{}

			if got := ops.Interrupt(sink); got != test.handled {
				t.Errorf("handled = %v, want %v", got, test.handled)
			}
			if sink.frames != test.frames {
				t.Errorf("frames = %d, want %d", sink.frames, test.frames)
			}
			if len(sink.completed) != test.acks {
				t.Errorf("acks = %d, want %d", len(sink.completed), test.acks)
			}
		})
	}
}

func TestISIBuildDescriptor(t *testing.T) {
	ops := newISI(newMemBus(), Timing{}, logger.Default())
	d := &Descriptor{Phys: 0x0100_0000}
	ops.BuildDescriptor(d, 0x2000_0000, 0x0100_0010)

	if d.Frame != 0x2000_0000 || d.Next != 0x0100_0010 {
		t.Errorf("descriptor = %+v", d)
	}
	if d.Ctrl != isiDmaCtrlWB {
		t.Errorf("ctrl = %#x, want write-back", d.Ctrl)
	}
}

func TestISIFormatSupported(t *testing.T) {
	ops := newISI(newMemBus(), Timing{}, logger.Default())
	for _, f := range []Fourcc{FourccGrey, FourccYUYV, FourccUYVY, FourccYVYU, FourccVYUY, FourccRGB565} {
		if !ops.FormatSupported(f) {
			t.Errorf("%s must be supported", f)
		}
	}
	for _, f := range []Fourcc{FourccSBGGR8, FourccRGB32} {
		if ops.FormatSupported(f) {
			t.Errorf("%s must not be supported", f)
		}
	}
}
