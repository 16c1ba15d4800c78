package capture

import (
	"time"

	"github.com/sensecam/capture/pkg/hw"
)

// Buffer is one caller-owned capture target. The engine binds it to a
// DMA descriptor on first enqueue and hands it back through
// DequeueRetired with a terminal status once the frame completed or
// the stream was torn down.
type Buffer struct {
	ID   int
	Addr uint32 // destination bus address of the frame payload
	Size uint32

	// Set on retirement. Status is nil for a captured frame,
	// ErrAbortedByStop for a teardown abort. Seq restarts at 0 on
	// every stream start and only counts captured frames.
	Status     error
	Seq        uint32
	CapturedAt time.Time

	desc   *hw.Descriptor
	slot   int
	queued bool
}

func NewBuffer(id int, addr, size uint32) *Buffer {
	return &Buffer{ID: id, Addr: addr, Size: size, slot: -1}
}

// Bound reports whether the buffer holds a DMA descriptor.
func (b *Buffer) Bound() bool { return b.desc != nil }

// pendingQueue is the FIFO of buffers awaiting capture. Insertion
// order is capture order.
type pendingQueue struct {
	items []*Buffer
}

func (q *pendingQueue) push(b *Buffer) { q.items = append(q.items, b) }
func (q *pendingQueue) empty() bool    { return len(q.items) == 0 }
func (q *pendingQueue) len() int       { return len(q.items) }

func (q *pendingQueue) head() *Buffer {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *pendingQueue) popHead() *Buffer {
	if len(q.items) == 0 {
		return nil
	}
	b := q.items[0]
	q.items = q.items[1:]
	return b
}

// drain empties the queue and returns the removed buffers in order.
func (q *pendingQueue) drain() []*Buffer {
	items := q.items
	q.items = nil
	return items
}
