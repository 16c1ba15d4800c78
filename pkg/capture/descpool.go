package capture

import (
	"errors"
	"fmt"

	"github.com/sensecam/capture/pkg/hw"
)

// Size of one descriptor record on the bus.
const descStride = 16

// descPool is a fixed arena of DMA descriptor slots with a free-index
// stack. Slot ownership is tracked explicitly so a double release is
// reported instead of corrupting the free stack. All calls happen with
// the engine lock held.
type descPool struct {
	slots []hw.Descriptor
	free  []int
	inUse []bool
}

func newDescPool(size int, base uint32) *descPool {
	p := &descPool{
		slots: make([]hw.Descriptor, size),
		free:  make([]int, 0, size),
		inUse: make([]bool, size),
	}
	for i := size - 1; i >= 0; i-- {
		p.slots[i].Phys = base + uint32(i)*descStride
		p.free = append(p.free, i)
	}
	return p
}

// acquire hands out the next free slot. Exhaustion is a hard error,
// surfaced to the caller of buffer preparation.
func (p *descPool) acquire() (*hw.Descriptor, int, error) {
	if len(p.free) == 0 {
		return nil, -1, ErrNoDescriptors
	}
	i := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[i] = true
	return &p.slots[i], i, nil
}

func (p *descPool) release(i int) error {
	if i < 0 || i >= len(p.slots) {
		return fmt.Errorf("descriptor slot %d out of range", i)
	}
	if !p.inUse[i] {
		return errors.New("descriptor slot released twice")
	}
	p.inUse[i] = false
	p.free = append(p.free, i)
	return nil
}

func (p *descPool) available() int { return len(p.free) }
func (p *descPool) size() int      { return len(p.slots) }
