package capture

// completion is a one-shot wait/notify primitive bridging interrupt
// dispatch and blocking control-path waits. reset swaps in a fresh
// channel, so a stale completion from a previous cycle can never
// satisfy a later wait. complete never blocks and is safe to call from
// interrupt dispatch; extra completions within one cycle are dropped.
type completion struct {
	ch chan struct{}
}

func newCompletion() *completion {
	return &completion{ch: make(chan struct{}, 1)}
}

func (c *completion) reset() {
	c.ch = make(chan struct{}, 1)
}

func (c *completion) complete() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}
