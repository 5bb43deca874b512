// Package progress carries (percent, label) updates out of long running
// generation stages. Sinks are called synchronously from the generating
// goroutine so they must return quickly.
package progress

import (
	"io"
	"log"
)

// Sink receives progress updates. pct is in [0,1] for the current stage.
type Sink interface {
	Update(pct float64, label string)
}

// Func adapts a plain function into a Sink.
type Func func(pct float64, label string)

// Update calls f.
func (f Func) Update(pct float64, label string) {
	f(pct, label)
}

type nop struct{}

func (nop) Update(float64, string) {}

// Nop returns a Sink that drops everything.
func Nop() Sink {
	return nop{}
}

// OrNop returns s, or a no-op sink if s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return nop{}
	}
	return s
}

// logSink writes stage completions to a logger.
type logSink struct {
	log *log.Logger
}

// Log returns a Sink that logs stage starts & completions (pct 0 and 1).
// Intermediate updates are dropped to keep logs readable.
func Log(logger *log.Logger) Sink {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &logSink{log: logger}
}

func (l *logSink) Update(pct float64, label string) {
	if pct <= 0 {
		l.log.Printf("%s ...", label)
	} else if pct >= 1 {
		l.log.Printf("%s done", label)
	}
}

// Multi fans an update out to several sinks.
type Multi []Sink

// Update forwards to every sink in order.
func (m Multi) Update(pct float64, label string) {
	for _, s := range m {
		if s != nil {
			s.Update(pct, label)
		}
	}
}

// Throttle limits how often a loop reports. It forwards at most `steps`
// evenly spaced updates over a loop of `total` iterations.
type Throttle struct {
	sink  Sink
	label string
	total int
	every int
}

// NewThrottle returns a Throttle for a loop of `total` iterations.
func NewThrottle(s Sink, label string, total, steps int) *Throttle {
	if steps < 1 {
		steps = 1
	}
	every := total / steps
	if every < 1 {
		every = 1
	}
	return &Throttle{sink: OrNop(s), label: label, total: total, every: every}
}

// Tick reports iteration i if it falls on a reporting boundary.
func (t *Throttle) Tick(i int) {
	if t.total <= 0 || i%t.every != 0 {
		return
	}
	t.sink.Update(float64(i)/float64(t.total), t.label)
}
