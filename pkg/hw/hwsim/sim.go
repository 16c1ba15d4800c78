// Package hwsim provides a software model of the legacy capture
// controller: a register file with the interrupt mask protocol,
// read-to-clear status, reset/disable acknowledgements and frame-done
// generation. It stands in for real hardware in tests and the demo
// binary, delivering interrupts asynchronously the way a platform IRQ
// line would.
package hwsim

import (
	"sync"
	"time"

	"github.com/sensecam/capture/pkg/logger"
)

// Register offsets and bits mirrored from the legacy variant.
const (
	regCtrl    = 0x24
	regStatus  = 0x28
	regInten   = 0x2c
	regIntdis  = 0x30
	regIntmask = 0x34
	regDmaCher = 0x38
	regDmaChdr = 0x3c
	regDmaChsr = 0x40

	ctrlEn   = 1 << 0
	ctrlDis  = 1 << 1
	ctrlSrst = 1 << 2

	srCxfrDone = 1 << 16
	srPxfrDone = 1 << 17

	chsrCCh = 1 << 0
	chsrPCh = 1 << 1
)

type Sim struct {
	mu      sync.Mutex
	log     *logger.Logger
	regs    map[uint32]uint32
	mask    uint32
	status  uint32
	chsr    uint32
	enabled bool

	// NoReset and NoDisable suppress the respective acknowledgement,
	// simulating a sensor with no pixel clock.
	NoReset   bool
	NoDisable bool

	irq  func() bool
	done chan struct{}
	wg   sync.WaitGroup
}

func New(log *logger.Logger) *Sim {
	return &Sim{log: log, regs: make(map[uint32]uint32), done: make(chan struct{})}
}

// OnInterrupt sets the handler invoked on every raised interrupt line.
// Delivery is asynchronous, the handler may take locks.
func (s *Sim) OnInterrupt(h func() bool) { s.irq = h }

func (s *Sim) Read32(off uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch off {
	case regStatus:
		v := s.status
		s.status = 0 // read clears
		return v
	case regIntmask:
		return s.mask
	case regDmaChsr:
		return s.chsr
	}
	return s.regs[off]
}

func (s *Sim) Write32(off uint32, val uint32) {
	s.mu.Lock()
	raise := false
	switch off {
	case regInten:
		s.mask |= val
	case regIntdis:
		s.mask &^= val
	case regDmaCher:
		s.chsr |= val
	case regDmaChdr:
		s.chsr &^= val
	case regCtrl:
		if val&ctrlSrst != 0 && !s.NoReset {
			s.enabled = false
			s.chsr = 0
			s.status |= ctrlSrst
			raise = true
		}
		if val&ctrlDis != 0 && !s.NoDisable {
			s.enabled = false
			s.status |= ctrlDis
			raise = true
		}
		if val&ctrlEn != 0 {
			s.enabled = true
		}
	default:
		s.regs[off] = val
	}
	s.mu.Unlock()

	if raise {
		s.raise()
	}
}

// CompleteFrame marks the current DMA transfer done and raises the
// interrupt line. It is a no-op unless the controller is enabled with
// an active channel, matching hardware that only signals while
// streaming.
func (s *Sim) CompleteFrame() {
	s.mu.Lock()
	fire := false
	if s.enabled && s.chsr&(chsrCCh|chsrPCh) != 0 {
		if s.chsr&chsrPCh != 0 {
			s.status |= srPxfrDone
		} else {
			s.status |= srCxfrDone
		}
		fire = true
	}
	s.mu.Unlock()

	if fire {
		s.raise()
	}
}

// Run generates a frame completion every interval until Close.
func (s *Sim) Run(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.CompleteFrame()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Sim) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Sim) raise() {
	h := s.irq
	if h == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if !h() && s.log != nil {
			s.log.Debug().Msg("spurious interrupt not handled")
		}
	}()
}
