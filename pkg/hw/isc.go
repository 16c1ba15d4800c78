package hw

import (
	"time"

	"github.com/sensecam/capture/pkg/logger"
)

// iscOps drives the newer controller. Single DMA channel with packed
// view descriptors and an internal clock block for the sensor master
// clock.
type iscOps struct {
	bus Bus
	t   Timing
	log *logger.Logger
}

func newISC(bus Bus, t Timing, log *logger.Logger) *iscOps {
	return &iscOps{bus: bus, t: t, log: log}
}

func (o *iscOps) Initialize() {
	o.bus.Write32(iscIntDis, ^uint32(0))
	o.bus.Read32(iscIntSr)

	var cfg0 uint32
	if o.t.HsyncActiveLow {
		cfg0 |= iscPfeHsyncActiveLow
	}
	if o.t.VsyncActiveLow {
		cfg0 |= iscPfeVsyncActiveLow
	}
	if o.t.PclkSampleFalling {
		cfg0 |= iscPfePixClkFallingEdge
	}
	cfg0 |= iscPfeModeProgressive | iscPfeContVideo
	cfg0 |= iscPfeBps8Bit

	o.bus.Write32(iscPfeCfg0, cfg0)
}

func (o *iscOps) Uninitialize() {
	// Wait until the end of the current frame.
	deadline := time.Now().Add(frameInterval)
	for o.bus.Read32(iscCtrlSr)&iscCtrlSrCapture != 0 {
		if time.Now().After(deadline) {
			o.log.Error().Msg("timeout waiting for capture to finish")
			break
		}
		time.Sleep(time.Millisecond)
	}
	o.bus.Write32(iscIntDis, iscIntDmaDone)
}

func (o *iscOps) ConfigureGeometry(width, height uint32, f Format) {
	// Frame geometry is driven by the sensor sync signals, only the
	// processing pipeline needs configuring.
	switch f.Code {
	case CodeSBGGR8:
		if f.Fourcc == FourccRGB565 {
			o.bus.Write32(iscCfaCtrl, iscCfaCtrlEnable)
			o.bus.Write32(iscCfaCfg, iscCfaCfgBggr|iscCfaCfgEdge)
			o.bus.Write32(iscGamCtrl, iscGamCtrlEnable|iscGamCtrlAllChan)
			o.bus.Write32(iscRlpCfg, iscRlpCfgModeRgb565)
			o.bus.Write32(iscDCfg, iscDCfgPacked16)
		} else {
			// raw Bayer pass-through
			o.bus.Write32(iscCfaCtrl, 0)
			o.bus.Write32(iscGamCtrl, 0)
			o.bus.Write32(iscRlpCfg, iscRlpCfgModeDat8)
			o.bus.Write32(iscDCfg, iscDCfgPacked8)
		}
	default: // YUV and grey pass through untouched
		o.bus.Write32(iscCfaCtrl, 0)
		o.bus.Write32(iscGamCtrl, 0)
		o.bus.Write32(iscRlpCfg, iscRlpCfgModeDat8)
		o.bus.Write32(iscDCfg, iscDCfgPacked8)
	}
}

func (o *iscOps) StartDMA(d *Descriptor, enableIRQ bool) {
	if enableIRQ {
		o.bus.Write32(iscIntEn, iscIntDmaDone)
	}

	o.bus.Write32(iscDnda, d.Phys)
	o.bus.Write32(iscDCtrl, iscDCtrlDescEnable|iscDCtrlDviewPacked|
		iscDCtrlDmaDoneIntEnable|iscDCtrlWriteBackEnable)
	o.bus.Write32(iscDad0, d.Frame)

	o.bus.Write32(iscCtrlEnReg, iscCtrlEnCapture)
}

func (o *iscOps) EnableInterrupt(kind Wait) {
	if kind == AwaitReset {
		o.bus.Write32(iscIntEn, iscIntSwrstComplete)
		o.bus.Write32(iscCtrlDisReg, iscCtrlDisSwrst)
	} else {
		o.bus.Write32(iscIntEn, iscIntDisableComplete)
		o.bus.Write32(iscCtrlDisReg, iscCtrlDisCapture)
	}
}

func (o *iscOps) BuildDescriptor(d *Descriptor, frameAddr, nextAddr uint32) {
	d.Frame = frameAddr
	d.Next = 0
	d.Stride = 0
	d.Ctrl = iscDCtrlDescEnable | iscDCtrlDviewPacked
}

func (o *iscOps) Interrupt(s Sink) bool {
	status := o.bus.Read32(iscIntSr)
	mask := o.bus.Read32(iscIntMask)
	pending := status & mask

	switch {
	case pending&iscIntSwrstComplete != 0:
		s.Completed(AwaitReset)
		o.bus.Write32(iscIntDis, iscIntSwrstComplete)
	case pending&iscIntDisableComplete != 0:
		s.Completed(AwaitDisable)
		o.bus.Write32(iscIntDis, iscIntDisableComplete)
	case pending&iscIntDmaDone != 0:
		s.FrameDone()
	default:
		return false
	}
	return true
}

func (o *iscOps) FormatSupported(f Fourcc) bool {
	switch f {
	case FourccGrey, FourccYUYV, FourccUYVY, FourccYVYU, FourccVYUY, FourccSBGGR8:
		return true
	}
	return false
}

// SetClock programs the master clock divisor off hclock and brings up
// the ISP clock. Each config write has to wait out the in-progress bit.
func (o *iscOps) SetClock(enable bool) {
	if !enable {
		o.bus.Write32(iscClkDis, iscClkMaster|iscClkIsp)
		return
	}

	cfg := iscClkCfgMcdiv(6) | iscClkCfgMasterHclock
	o.bus.Write32(iscClkCfg, cfg)
	o.waitClkSettle()
	o.bus.Write32(iscClkEn, iscClkMaster)

	cfg |= iscClkCfgIcdiv(1) | iscClkCfgIspSelHclock
	o.bus.Write32(iscClkCfg, cfg)
	o.waitClkSettle()
	o.bus.Write32(iscClkEn, iscClkIsp)
}

func (o *iscOps) waitClkSettle() {
	deadline := time.Now().Add(100 * time.Millisecond)
	for o.bus.Read32(iscClkSr)&iscClkSip != 0 {
		if time.Now().After(deadline) {
			o.log.Error().Msg("clock setting stuck in progress")
			return
		}
	}
}
