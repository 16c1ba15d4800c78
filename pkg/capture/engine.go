// Package capture implements the interrupt-driven video capture
// engine: a bounded ring of caller buffers streamed into by DMA and
// retired back in submission order. Hardware access goes exclusively
// through the variant operation table in pkg/hw.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sensecam/capture/pkg/hw"
	"github.com/sensecam/capture/pkg/logger"
	"github.com/sensecam/capture/pkg/monitoring"
)

const (
	// DefaultPoolSize bounds the number of concurrently queued buffers.
	DefaultPoolSize = 32
	// waitTimeout is the hard deadline on reset/disable acknowledgement.
	waitTimeout = 500 * time.Millisecond
	// descTableBase is the bus address of the descriptor arena.
	descTableBase = 0x0100_0000
)

// State of the streaming state machine.
type State uint8

const (
	Idle State = iota
	Armed
	Capturing
	Stopping
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Capturing:
		return "capturing"
	case Stopping:
		return "stopping"
	}
	return "idle"
}

// Engine owns the descriptor pool, the pending queue and the single
// active buffer reference. A single mutex serializes the control path
// against interrupt dispatch; blocking waits always happen outside it.
type Engine struct {
	// mu protects active, pending, pool, seq and state. Interrupt
	// dispatch runs entirely under it and must not block.
	mu sync.Mutex
	// ctl serializes Start and Stop against each other.
	ctl sync.Mutex

	ops  hw.Ops
	pool *descPool

	pending pendingQueue
	active  *Buffer
	retired chan *Buffer

	state     State
	streaming bool
	seq       uint32

	width, height uint32
	format        hw.Format

	complete *completion
	timeout  time.Duration

	log     *logger.Logger
	metrics *monitoring.Metrics
}

func NewEngine(ops hw.Ops, poolSize int, log *logger.Logger) *Engine {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Engine{
		ops:      ops,
		pool:     newDescPool(poolSize, descTableBase),
		retired:  make(chan *Buffer, 2*poolSize),
		complete: newCompletion(),
		timeout:  waitTimeout,
		log:      log,
	}
}

// SetMetrics attaches capture counters. Optional; a nil Metrics is
// valid.
func (e *Engine) SetMetrics(m *monitoring.Metrics) { e.metrics = m }

// State returns the current streaming state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PoolSize returns the fixed descriptor pool capacity.
func (e *Engine) PoolSize() int { return e.pool.size() }

// SetFormat validates the pixel format against the variant's supported
// set and stores the stream geometry. Fails with ErrUnsupportedFormat;
// the caller is expected to fall back to a default format and retry.
func (e *Engine) SetFormat(width, height uint32, f hw.Format) error {
	if !e.ops.FormatSupported(f.Fourcc) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Fourcc)
	}
	e.mu.Lock()
	e.width, e.height, e.format = width, height, f
	e.mu.Unlock()
	return nil
}

// Enqueue binds a DMA descriptor to the buffer and appends it to the
// pending queue. Binding is idempotent: a buffer already bound keeps
// its descriptor, a buffer already pending is left untouched. If no
// buffer is active, the new one is promoted and, when the stream is
// running, armed for DMA immediately.
func (e *Engine) Enqueue(b *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b.queued {
		return nil
	}

	if b.desc == nil {
		d, slot, err := e.pool.acquire()
		if err != nil {
			e.metrics.DescriptorShortage()
			return err
		}
		e.ops.BuildDescriptor(d, b.Addr, 0)
		b.desc, b.slot = d, slot
	}

	b.Status = nil
	b.queued = true
	e.pending.push(b)

	if e.active == nil {
		e.active = b
		if e.streaming {
			e.ops.StartDMA(b.desc, true)
			e.state = Armed
		}
	}
	return nil
}

// Start resets the hardware and begins streaming. count is the number
// of buffers queued ahead of the call; with at least one, DMA is armed
// for the current active buffer right away. A missed reset
// acknowledgement is fatal to the call and leaves the engine idle.
func (e *Engine) Start(count int) error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	if e.streaming {
		e.mu.Unlock()
		return ErrStreaming
	}
	e.mu.Unlock()

	// The reset will only succeed if we have a pixel clock from the
	// camera.
	if err := e.waitStatus(hw.AwaitReset); err != nil {
		e.metrics.HwTimeout()
		e.log.Error().Err(err).Msg("hardware reset timed out")
		return fmt.Errorf("reset: %w", err)
	}

	e.ops.Initialize()
	e.ops.ConfigureGeometry(e.width, e.height, e.format)

	e.mu.Lock()
	e.seq = 0
	e.streaming = true
	if count > 0 && e.active != nil {
		e.ops.StartDMA(e.active.desc, true)
		e.state = Armed
	}
	e.mu.Unlock()

	e.log.Debug().Msgf("streaming started, %d buffers queued", count)
	return nil
}

// Stop tears the stream down. Every pending buffer, the active one
// included, is retired with ErrAbortedByStop and its descriptor
// returns to the pool. The disable acknowledgement wait is skipped in
// triggered (one-shot) mode; a missed acknowledgement is reported but
// the engine still ends up idle.
func (e *Engine) Stop(triggered bool) error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	e.state = Stopping
	e.streaming = false
	e.active = nil
	for _, b := range e.pending.drain() {
		e.unbindLocked(b)
		e.retireLocked(b, ErrAbortedByStop)
		e.metrics.Aborted()
	}
	e.mu.Unlock()

	e.ops.Uninitialize()

	var err error
	if !triggered {
		if werr := e.waitStatus(hw.AwaitDisable); werr != nil {
			e.metrics.HwTimeout()
			e.log.Error().Err(werr).Msg("hardware disable timed out")
			err = fmt.Errorf("disable: %w", werr)
		}
	}

	e.mu.Lock()
	e.state = Idle
	e.mu.Unlock()

	e.log.Debug().Msg("streaming stopped")
	return err
}

// ReleaseBuffer gives the buffer's descriptor back to the pool once
// the caller is done with it. Pending buffers cannot be released.
func (e *Engine) ReleaseBuffer(b *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b.queued {
		return fmt.Errorf("buffer %d still pending", b.ID)
	}
	e.unbindLocked(b)
	return nil
}

// DequeueRetired hands back the oldest retired buffer with its
// terminal status, blocking until one is available or the context is
// canceled.
func (e *Engine) DequeueRetired(ctx context.Context) (*Buffer, error) {
	select {
	case b := <-e.retired:
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Interrupt is the IRQ entry point. It wraps the variant interrupt
// handler with the engine lock for the duration of status read and
// dispatch.
func (e *Engine) Interrupt() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ops.Interrupt(e)
}

// FrameDone implements hw.Sink. Called with e.mu held. The active
// buffer is retired with success and the next queue head, if any, is
// armed without re-enabling interrupts.
func (e *Engine) FrameDone() {
	if e.active != nil {
		b := e.pending.popHead()
		b.Seq = e.seq
		e.seq++
		b.CapturedAt = time.Now()
		e.retireLocked(b, nil)
		e.metrics.FrameDone()
	}

	if e.pending.empty() {
		e.active = nil
		e.state = Idle
	} else {
		// start next dma frame
		e.active = e.pending.head()
		e.ops.StartDMA(e.active.desc, false)
		e.state = Capturing
	}
}

// Completed implements hw.Sink. Called with e.mu held.
func (e *Engine) Completed(kind hw.Wait) {
	e.complete.complete()
}

// waitStatus arms the acknowledgement interrupt for kind and blocks
// until it fires or the deadline passes. The completion is reset under
// the lock before arming so a stale signal cannot leak into this wait
// cycle; the actual sleep happens outside the lock.
func (e *Engine) waitStatus(kind hw.Wait) error {
	e.mu.Lock()
	e.complete.reset()
	ch := e.complete.ch
	e.ops.EnableInterrupt(kind)
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-time.After(e.timeout):
		return fmt.Errorf("%w: %s not acknowledged", ErrHardwareTimeout, kind)
	}
}

// retireLocked assigns the terminal status and hands the buffer to the
// retired channel. Must not block: the channel is sized so it cannot
// fill while every buffer retires at most once per enqueue.
func (e *Engine) retireLocked(b *Buffer, status error) {
	b.Status = status
	b.queued = false
	select {
	case e.retired <- b:
	default:
		e.log.Error().Msgf("retired queue overflow, dropping buffer %d", b.ID)
	}
}

func (e *Engine) unbindLocked(b *Buffer) {
	if b.desc == nil {
		return
	}
	if err := e.pool.release(b.slot); err != nil {
		e.log.Error().Err(err).Msgf("releasing descriptor of buffer %d", b.ID)
	}
	b.desc, b.slot = nil, -1
}
