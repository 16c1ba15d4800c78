// Package hw holds the per-variant hardware operation tables for the
// image sensor DMA interface. The capture engine drives the hardware
// only through the Ops interface; register layouts stay private to the
// variant that owns them.
package hw

import (
	"fmt"

	"github.com/sensecam/capture/pkg/logger"
)

// Recognized device identities, bound once at attach time.
const (
	DeviceISI = "at91sam9g45-isi"
	DeviceISC = "sama5d2-isc"
)

// Bus is the 32-bit memory-mapped register access primitive.
type Bus interface {
	Read32(off uint32) uint32
	Write32(off uint32, val uint32)
}

// Wait selects which hardware acknowledgement an EnableInterrupt call
// is arming the controller for.
type Wait int

const (
	AwaitDisable Wait = iota
	AwaitReset
)

func (w Wait) String() string {
	if w == AwaitReset {
		return "reset"
	}
	return "disable"
}

// Descriptor is one DMA descriptor slot. Frame, Ctrl, Next and Stride
// mirror the hardware record; which of them the controller reads is
// variant-specific. Phys is the bus address of the record itself, set
// by the descriptor pool and written to the chain register by StartDMA.
type Descriptor struct {
	Phys   uint32
	Frame  uint32
	Ctrl   uint32
	Next   uint32
	Stride uint32
}

// Sink receives interrupt events. It is implemented by the capture
// engine; all methods are invoked from Interrupt with the engine lock
// held and must not block.
type Sink interface {
	// FrameDone signals a completed DMA frame transfer.
	FrameDone()
	// Completed signals a reset or disable acknowledgement.
	Completed(kind Wait)
}

// Ops is the fixed operation set each hardware variant supplies.
type Ops interface {
	// Initialize programs the bus timing configuration and clears any
	// stale interrupt state. Called after a successful reset wait.
	Initialize()
	// Uninitialize waits for an in-flight frame to drain, bounded by
	// one frame interval, and masks the frame interrupts.
	Uninitialize()
	// ConfigureGeometry sets up colorspace and image size for f.
	ConfigureGeometry(width, height uint32, f Format)
	// StartDMA programs the descriptor chain register with d and
	// enables the capture channel. enableIRQ additionally unmasks the
	// frame-done interrupts; re-arming mid-stream leaves them as is.
	StartDMA(d *Descriptor, enableIRQ bool)
	// EnableInterrupt unmasks the acknowledgement interrupt for kind
	// and issues the corresponding reset or disable command.
	EnableInterrupt(kind Wait)
	// BuildDescriptor fills d with the variant record layout.
	BuildDescriptor(d *Descriptor, frameAddr, nextAddr uint32)
	// Interrupt consumes pending hardware status and dispatches to s.
	// Reports whether any known event was handled.
	Interrupt(s Sink) bool
	// FormatSupported reports whether the variant can emit f.
	FormatSupported(f Fourcc) bool
	// SetClock enables or disables the sensor clock block.
	SetClock(enable bool)
}

// Timing carries the sensor bus timing inputs loaded before attach.
type Timing struct {
	HsyncActiveLow    bool
	VsyncActiveLow    bool
	PclkSampleFalling bool
	EmbSync           bool
	FullMode          bool
	FrateDiv          uint32
	DataWidth         int
}

// Lookup selects the operation table for the given device identity.
func Lookup(compat string, bus Bus, t Timing, log *logger.Logger) (Ops, error) {
	switch compat {
	case DeviceISI:
		return newISI(bus, t, log), nil
	case DeviceISC:
		return newISC(bus, t, log), nil
	}
	return nil, fmt.Errorf("unknown capture device %q", compat)
}
