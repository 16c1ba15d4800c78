package capture

import "errors"

var (
	// ErrNoDescriptors is returned by Enqueue when the descriptor pool
	// is exhausted. The caller has to wait for a retirement before
	// retrying.
	ErrNoDescriptors = errors.New("not enough dma descriptors")
	// ErrHardwareTimeout means a reset or disable acknowledgement was
	// not observed within the deadline. Fatal to the current start or
	// stop call, never retried internally.
	ErrHardwareTimeout = errors.New("hardware ack timeout")
	// ErrUnsupportedFormat means the variant cannot emit the requested
	// pixel format. The caller should fall back to a default format.
	ErrUnsupportedFormat = errors.New("pixel format not supported")
	// ErrAbortedByStop is the terminal status of buffers still pending
	// when the stream is torn down.
	ErrAbortedByStop = errors.New("capture aborted")
	// ErrStreaming is returned by Start when the stream already runs.
	ErrStreaming = errors.New("already streaming")
)
