package capture

import (
	"fmt"

	"github.com/sensecam/capture/pkg/config"
	"github.com/sensecam/capture/pkg/hw"
	"github.com/sensecam/capture/pkg/logger"
)

// Attach binds the variant operation table for the configured device
// identity, enables the sensor clock and builds an engine around it.
// The requested pixel format falls back to YUYV when the variant
// rejects it, mirroring what the host framework would negotiate.
func Attach(bus hw.Bus, conf config.Capture, log *logger.Logger) (*Engine, error) {
	ops, err := hw.Lookup(conf.Device, bus, timing(conf.Bus), log)
	if err != nil {
		return nil, err
	}

	f, err := hw.ParseFourcc(conf.Format)
	if err != nil {
		return nil, fmt.Errorf("capture config: %w", err)
	}
	if !ops.FormatSupported(f) {
		log.Warn().Msgf("format %s not supported by %s, falling back to YUYV", f, conf.Device)
		f = hw.FourccYUYV
	}

	ops.SetClock(true)

	e := NewEngine(ops, conf.Buffers, log)
	if err := e.SetFormat(conf.Width, conf.Height, hw.Format{Fourcc: f, Code: hw.DefaultCode(f)}); err != nil {
		return nil, err
	}
	return e, nil
}

// Detach releases the sensor clock.
func (e *Engine) Detach() {
	e.ops.SetClock(false)
}

func timing(b config.Bus) hw.Timing {
	return hw.Timing{
		HsyncActiveLow:    b.HsyncActiveLow,
		VsyncActiveLow:    b.VsyncActiveLow,
		PclkSampleFalling: b.PclkSampleFalling,
		EmbSync:           b.EmbSync,
		FullMode:          b.FullMode,
		FrateDiv:          b.FrateDiv,
		DataWidth:         b.DataWidth,
	}
}
