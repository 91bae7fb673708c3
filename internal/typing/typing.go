// Package typing implements the client half of typing indicators: a sender-side
// idle debouncer and a receiver-side indicator that clears itself when a stop
// signal is lost. The server only relays signals; all timing lives here.
package typing

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultIdle   = 900 * time.Millisecond
	DefaultSafety = 1200 * time.Millisecond
)

// Debouncer turns a stream of input changes into typing=true/false signals.
// Every Touch emits true and re-arms a single idle timer; when the timer fires
// it emits false.
type Debouncer struct {
	mu     sync.Mutex
	idle   time.Duration
	emit   func(typing bool)
	timer  *time.Timer
	active bool
	gen    uint64
}

func NewDebouncer(idle time.Duration, emit func(typing bool)) *Debouncer {
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Debouncer{idle: idle, emit: emit}
}

// Touch records an input change.
func (d *Debouncer) Touch() {
	d.mu.Lock()
	d.active = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.idle, func() { d.expire(gen) })
	d.mu.Unlock()

	d.emit(true)
}

// Stop cancels the idle timer and emits false if a true was outstanding.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	wasActive := d.active
	d.active = false
	d.mu.Unlock()

	if wasActive {
		d.emit(false)
	}
}

// expire runs on the timer goroutine. gen guards against a timer that fired
// while a newer Touch was replacing it.
func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(false)
}

// Indicator tracks which peers are shown as typing. A peer is cleared on an
// explicit typing=false or when its safety window elapses without a refresh.
type Indicator struct {
	mu       sync.Mutex
	window   time.Duration
	onChange func(peer string, typing bool)
	timers   map[string]*time.Timer
	gens     map[string]uint64
}

func NewIndicator(window time.Duration, onChange func(peer string, typing bool)) *Indicator {
	if window <= 0 {
		window = DefaultSafety
	}
	if onChange == nil {
		onChange = func(string, bool) {}
	}
	return &Indicator{
		window:   window,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
		gens:     make(map[string]uint64),
	}
}

// Observe applies one received typing signal from peer.
func (i *Indicator) Observe(peer string, typing bool) {
	if !typing {
		i.clear(peer, 0, false)
		return
	}

	i.mu.Lock()
	_, shown := i.timers[peer]
	if shown {
		i.timers[peer].Stop()
	}
	i.gens[peer]++
	gen := i.gens[peer]
	i.timers[peer] = time.AfterFunc(i.window, func() { i.clear(peer, gen, true) })
	i.mu.Unlock()

	if !shown {
		i.onChange(peer, true)
	}
}

// Active returns the peers currently shown as typing, sorted.
func (i *Indicator) Active() []string {
	i.mu.Lock()
	peers := lo.Keys(i.timers)
	i.mu.Unlock()
	slices.Sort(peers)
	return peers
}

// Close cancels every pending timer without emitting changes.
func (i *Indicator) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for peer, timer := range i.timers {
		timer.Stop()
		delete(i.timers, peer)
	}
}

func (i *Indicator) clear(peer string, gen uint64, fromTimer bool) {
	i.mu.Lock()
	timer, shown := i.timers[peer]
	if !shown || (fromTimer && gen != i.gens[peer]) {
		i.mu.Unlock()
		return
	}
	timer.Stop()
	delete(i.timers, peer)
	i.mu.Unlock()

	i.onChange(peer, false)
}
