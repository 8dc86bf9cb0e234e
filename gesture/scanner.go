// gesture/scanner.go
package gesture

import (
	"context"
	"time"

	"doorcore-go/hw"
)

// DefaultSampleInterval is the fixed poll period. The classifier's timing
// thresholds are derived from wall-clock timestamps, not sample counts, so
// a late tick does not skew gesture timing.
const DefaultSampleInterval = 10 * time.Millisecond

// Scanner polls one input pin on a fixed period and feeds the classifier.
// The periodic sleep is its only suspension point; classification itself
// never blocks.
type Scanner struct {
	in       hw.InputPin
	cl       *Classifier
	sink     Sink
	interval time.Duration
}

// Sink receives classified events as they are emitted.
type Sink interface {
	Dispatch(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

func (f SinkFunc) Dispatch(ev Event) { f(ev) }

// NewScanner wires a pin to a classifier. A non-positive interval falls
// back to the default.
func NewScanner(in hw.InputPin, cl *Classifier, sink Sink, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Scanner{in: in, cl: cl, sink: sink, interval: interval}
}

// Run polls until ctx is cancelled. Read errors skip the tick; the previous
// sample is kept so the next good read still edge-detects correctly.
func (s *Scanner) Run(ctx context.Context) {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	println("[gesture] scanner started")
	for {
		select {
		case <-ctx.Done():
			println("[gesture] scanner stopped")
			return
		case now := <-tick.C:
			level, err := s.in.Read()
			if err != nil {
				println("[gesture] read failed:", err.Error())
				continue
			}
			if ev, ok := s.cl.Step(level, now); ok {
				s.sink.Dispatch(ev)
			}
		}
	}
}
