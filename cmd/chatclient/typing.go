package main

import (
	"sync"
	"time"

	"github.com/Tyrowin/gochat-presence/internal/typing"
)

// typingSender pins the recipient of a typing run, so the stop signal reaches
// the peer that saw the start even if the target changes in between.
type typingSender struct {
	mu        sync.Mutex
	target    string
	send      func(to string, typing bool) error
	debouncer *typing.Debouncer
}

func newTypingSender(idle time.Duration, send func(to string, typing bool) error) *typingSender {
	s := &typingSender{send: send}
	s.debouncer = typing.NewDebouncer(idle, s.emit)
	return s
}

// Touch records input addressed to target. Switching target first stops the
// run on the previous one.
func (s *typingSender) Touch(target string) {
	s.mu.Lock()
	prev := s.target
	s.mu.Unlock()

	if prev != "" && prev != target {
		s.debouncer.Stop()
	}

	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
	s.debouncer.Touch()
}

// Stop ends the current run, if any, on the target it started with.
func (s *typingSender) Stop() {
	s.debouncer.Stop()
}

func (s *typingSender) emit(on bool) {
	s.mu.Lock()
	to := s.target
	s.mu.Unlock()
	_ = s.send(to, on)
}
