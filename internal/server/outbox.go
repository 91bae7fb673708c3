package server

import "sync"

// maxBatch caps how many queued events the write pump packs into one frame.
const maxBatch = 64

// outbox is a connection's outbound queue. Pushes never block the hub; the
// queue is bounded by bytes, so only a connection that stops draining is cut
// off, never one that is merely behind.
type outbox struct {
	mu       sync.Mutex
	frames   [][]byte
	bytes    int
	maxBytes int
	closed   bool
	ready    chan struct{}
}

func newOutbox(maxBytes int) *outbox {
	return &outbox{maxBytes: maxBytes, ready: make(chan struct{}, 1)}
}

// push queues frame. It returns false if the outbox is closed, or if frame
// would take a non-empty queue past maxBytes.
func (o *outbox) push(frame []byte) bool {
	o.mu.Lock()
	if o.closed || (len(o.frames) > 0 && o.bytes+len(frame) > o.maxBytes) {
		o.mu.Unlock()
		return false
	}
	o.frames = append(o.frames, frame)
	o.bytes += len(frame)
	o.mu.Unlock()

	o.signal()
	return true
}

// take removes up to limit frames in queue order. finished reports that the
// outbox is closed and nothing is left after this batch.
func (o *outbox) take(limit int) (batch [][]byte, finished bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := min(limit, len(o.frames))
	batch = o.frames[:n:n]
	o.frames = o.frames[n:]
	for _, f := range batch {
		o.bytes -= len(f)
	}
	if len(o.frames) == 0 {
		o.frames = nil
	} else {
		o.signal()
	}
	return batch, o.closed && len(o.frames) == 0
}

// close stops further pushes. Frames already queued are still handed out.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.signal()
}

// queued returns the number of frames and bytes waiting.
func (o *outbox) queued() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames), o.bytes
}

func (o *outbox) signal() {
	select {
	case o.ready <- struct{}{}:
	default:
	}
}
