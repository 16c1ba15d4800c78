package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sensecam/capture/pkg/config"
	"github.com/sensecam/capture/pkg/hw"
	"github.com/sensecam/capture/pkg/hw/hwsim"
	"github.com/sensecam/capture/pkg/logger"
)

func simConfig() config.Capture {
	return config.Capture{
		Device:  hw.DeviceISI,
		Width:   640,
		Height:  480,
		Format:  "YUYV",
		Buffers: 8,
		Bus:     config.Bus{FullMode: true, DataWidth: 8},
	}
}

func attachSim(t *testing.T) (*Engine, *hwsim.Sim) {
	t.Helper()
	log := logger.Default()
	sim := hwsim.New(log)
	e, err := Attach(sim, simConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	sim.OnInterrupt(e.Interrupt)
	t.Cleanup(func() {
		sim.Close()
		e.Detach()
	})
	return e, sim
}

func TestSimStreaming(t *testing.T) {
	e, sim := attachSim(t)

	buffers := make([]*Buffer, 3)
	for i := range buffers {
		buffers[i] = NewBuffer(i, uint32(0x2000_0000+i*640*480*2), 640*480*2)
		if err := e.Enqueue(buffers[i]); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := e.Start(len(buffers)); err != nil {
		t.Fatal(err)
	}

	for i := range buffers {
		sim.CompleteFrame()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		b, err := e.DequeueRetired(ctx)
		cancel()
		if err != nil {
			t.Fatalf("frame %d never retired: %v", i, err)
		}
		if b.ID != i || b.Status != nil || b.Seq != uint32(i) {
			t.Errorf("frame %d: buffer %d, status %v, seq %d", i, b.ID, b.Status, b.Seq)
		}
	}

	if err := e.Stop(false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle", e.State())
	}
}

func TestSimStopAborts(t *testing.T) {
	e, _ := attachSim(t)

	for i := 0; i < 2; i++ {
		if err := e.Enqueue(NewBuffer(i, uint32(0x2000_0000+i*0x1000), 0x1000)); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Start(2); err != nil {
		t.Fatal(err)
	}
	if err := e.Stop(false); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		b, err := e.DequeueRetired(ctx)
		cancel()
		if err != nil {
			t.Fatalf("abort %d never retired: %v", i, err)
		}
		if !errors.Is(b.Status, ErrAbortedByStop) {
			t.Errorf("buffer %d status = %v, want ErrAbortedByStop", b.ID, b.Status)
		}
	}
}

func TestSimResetTimeout(t *testing.T) {
	e, sim := attachSim(t)
	sim.NoReset = true
	e.timeout = 50 * time.Millisecond

	if err := e.Start(0); !errors.Is(err, ErrHardwareTimeout) {
		t.Fatalf("start = %v, want ErrHardwareTimeout", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle", e.State())
	}
}

func TestSimTriggeredStop(t *testing.T) {
	e, sim := attachSim(t)
	sim.NoDisable = true
	e.timeout = 50 * time.Millisecond

	if err := e.Start(0); err != nil {
		t.Fatal(err)
	}
	// one-shot mode never waits for the disable acknowledgement
	if err := e.Stop(true); err != nil {
		t.Errorf("triggered stop: %v", err)
	}
}

func TestSimTickerStreaming(t *testing.T) {
	e, sim := attachSim(t)

	const frames = 4
	for i := 0; i < frames; i++ {
		if err := e.Enqueue(NewBuffer(i, uint32(i)<<12, 0x1000)); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Start(frames); err != nil {
		t.Fatal(err)
	}
	sim.Run(5 * time.Millisecond)

	for i := 0; i < frames; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		b, err := e.DequeueRetired(ctx)
		cancel()
		if err != nil {
			t.Fatalf("frame %d never retired: %v", i, err)
		}
		if b.Seq != uint32(i) {
			t.Errorf("seq = %d, want %d", b.Seq, i)
		}
	}
	if err := e.Stop(false); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
