package hw

import (
	"time"

	"github.com/sensecam/capture/pkg/logger"
)

// Minimal sensor frame rate the drain wait in Uninitialize accounts for.
const (
	minFrameRate  = 15
	frameInterval = time.Second / minFrameRate
)

// isiOps drives the legacy controller. It has two DMA paths: the codec
// path for YUV output and the preview path which converts to RGB.
type isiOps struct {
	bus Bus
	t   Timing
	log *logger.Logger

	// set by ConfigureGeometry, read-only while streaming
	previewPath bool
}

func newISI(bus Bus, t Timing, log *logger.Logger) *isiOps {
	return &isiOps{bus: bus, t: t, log: log}
}

func (o *isiOps) Initialize() {
	// Mask everything and clear stale pending interrupts. The status
	// register is read-to-clear.
	o.bus.Write32(isiIntdis, ^uint32(0))
	o.bus.Read32(isiStatus)

	var cfg1 uint32
	if o.t.HsyncActiveLow {
		cfg1 |= isiCfg1HsyncPolActiveLow
	}
	if o.t.VsyncActiveLow {
		cfg1 |= isiCfg1VsyncPolActiveLow
	}
	if o.t.PclkSampleFalling {
		cfg1 |= isiCfg1PixclkPolActiveFall
	}
	if o.t.EmbSync {
		cfg1 |= isiCfg1EmbSync
	}
	if o.t.FullMode {
		cfg1 |= isiCfg1FullMode
	}
	cfg1 |= isiCfg1ThmaskBeats16
	cfg1 |= o.t.FrateDiv & isiCfg1FrateDivMask
	cfg1 |= isiCfg1Discr

	o.bus.Write32(isiCtrl, isiCtrlDis)
	o.bus.Write32(isiCfg1, cfg1)
}

func (o *isiOps) Uninitialize() {
	if !o.previewPath {
		// Wait until the end of the current codec frame.
		deadline := time.Now().Add(frameInterval)
		for o.bus.Read32(isiStatus)&isiCtrlCdc != 0 {
			if time.Now().After(deadline) {
				o.log.Error().Msg("timeout waiting for codec request to finish")
				break
			}
			time.Sleep(time.Millisecond)
		}
	}
	o.bus.Write32(isiIntdis, isiSrCxfrDone|isiSrPxfrDone)
}

// yuvSwap picks the YCC swap mode that turns the sensor sample order
// into the requested host format. The codec path does no swap by
// default, so sensor output passes through unchanged.
func (o *isiOps) yuvSwap(f Format) uint32 {
	if f.Fourcc == FourccYUYV {
		switch f.Code {
		case CodeVYUY8:
			return isiCfg2YccSwapMode3
		case CodeUYVY8:
			return isiCfg2YccSwapMode2
		case CodeYVYU8:
			return isiCfg2YccSwapMode1
		}
	} else if f.Fourcc == FourccRGB565 {
		// The preview path converts UYVY to RGB, so anything else
		// coming off the sensor has to be swapped into UYVY first.
		switch f.Code {
		case CodeVYUY8:
			return isiCfg2YccSwapMode1
		case CodeYUYV8:
			return isiCfg2YccSwapMode2
		case CodeYVYU8:
			return isiCfg2YccSwapMode3
		}
	}
	return isiCfg2YccSwapDefault
}

func (o *isiOps) ConfigureGeometry(width, height uint32, f Format) {
	o.previewPath = f.Fourcc == FourccRGB565 || f.Fourcc == FourccRGB32

	var cfg2 uint32
	switch f.Code {
	case CodeVYUY8, CodeUYVY8, CodeYVYU8, CodeYUYV8:
		cfg2 = isiCfg2ColSpaceYCbCr | o.yuvSwap(f)
	default: // grey
		cfg2 = isiCfg2Grayscale | isiCfg2ColSpaceYCbCr
	}

	o.bus.Write32(isiCtrl, isiCtrlDis)
	cfg2 |= ((width - 1) << isiCfg2IMHsizeOffset) & isiCfg2IMHsizeMask
	cfg2 |= ((height - 1) << isiCfg2IMVsizeOffset) & isiCfg2IMVsizeMask
	o.bus.Write32(isiCfg2, cfg2)

	// No down sampling, preview size equal to sensor output size.
	psize := ((width - 1) << isiPsizePrevHsizeOffset) & isiPsizePrevHsizeMask
	psize |= ((height - 1) << isiPsizePrevVsizeOffset) & isiPsizePrevVsizeMask
	o.bus.Write32(isiPsize, psize)
	o.bus.Write32(isiPdecf, isiPdecfNoSampling)
}

func (o *isiOps) StartDMA(d *Descriptor, enableIRQ bool) {
	if enableIRQ {
		// cxfr for the codec path, pxfr for the preview path
		o.bus.Write32(isiInten, isiSrCxfrDone|isiSrPxfrDone)
	}

	if !o.previewPath {
		o.bus.Write32(isiDmaCDscr, d.Phys)
		o.bus.Write32(isiDmaCCtrl, isiDmaCtrlFetch|isiDmaCtrlDone)
		o.bus.Write32(isiDmaCher, isiDmaChsrCCh)
	} else {
		o.bus.Write32(isiDmaPDscr, d.Phys)
		o.bus.Write32(isiDmaPCtrl, isiDmaCtrlFetch|isiDmaCtrlDone)
		o.bus.Write32(isiDmaCher, isiDmaChsrPCh)
	}

	ctrl := uint32(isiCtrlEn)
	if !o.previewPath {
		ctrl |= isiCtrlCdc
	}
	o.bus.Write32(isiCtrl, ctrl)
}

func (o *isiOps) EnableInterrupt(kind Wait) {
	if kind == AwaitReset {
		o.bus.Write32(isiInten, isiCtrlSrst)
		o.bus.Write32(isiCtrl, isiCtrlSrst)
	} else {
		o.bus.Write32(isiInten, isiCtrlDis)
		o.bus.Write32(isiCtrl, isiCtrlDis)
	}
}

func (o *isiOps) BuildDescriptor(d *Descriptor, frameAddr, nextAddr uint32) {
	d.Frame = frameAddr
	d.Next = nextAddr
	d.Ctrl = isiDmaCtrlWB
	d.Stride = 0
}

func (o *isiOps) Interrupt(s Sink) bool {
	status := o.bus.Read32(isiStatus)
	mask := o.bus.Read32(isiIntmask)
	pending := status & mask

	switch {
	case pending&isiCtrlSrst != 0:
		s.Completed(AwaitReset)
		o.bus.Write32(isiIntdis, isiCtrlSrst)
	case pending&isiCtrlDis != 0:
		s.Completed(AwaitDisable)
		o.bus.Write32(isiIntdis, isiCtrlDis)
	case pending&(isiSrCxfrDone|isiSrPxfrDone) != 0:
		s.FrameDone()
	default:
		return false
	}
	return true
}

func (o *isiOps) FormatSupported(f Fourcc) bool {
	switch f {
	case FourccGrey, FourccYUYV, FourccUYVY, FourccYVYU, FourccVYUY, FourccRGB565:
		return true
	}
	return false
}

// SetClock is a no-op: the peripheral clock of the legacy controller is
// managed by the platform, not through its register block.
func (o *isiOps) SetClock(enable bool) {}
