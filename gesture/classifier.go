// Package gesture turns raw button level samples into semantic events.
// The classifier is pure and time-injected: no sleeps, no channels, no
// hardware. The scanner owns the poll loop and feeds it.
package gesture

import (
	"time"

	"doorcore-go/types"
)

// Default timing thresholds. Only the two load-bearing thresholds exist;
// there is no separate debounce filter beyond the fixed sample interval,
// so contact bounce shorter than one poll period is invisible and bounce
// around a poll edge is absorbed by these windows. Known limitation.
const (
	DefaultLongPress         = 1000 * time.Millisecond
	DefaultDoubleClickWindow = 300 * time.Millisecond
)

// State of the classifier. Exactly one is active at a time.
type State uint8

const (
	Idle State = iota
	Pressed
	WaitSecond
	DoublePressed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case WaitSecond:
		return "wait_second"
	case DoublePressed:
		return "double_pressed"
	default:
		return "invalid"
	}
}

// Event is one classified gesture.
type Event struct {
	Kind   types.GestureKind
	Source int
}

// Classifier is the press/release state machine for one input. It is owned
// by a single scanner task and must not be shared.
type Classifier struct {
	source      int
	longPress   time.Duration
	doubleClick time.Duration

	state         State
	lastLevel     bool // previous raw sample; released == true (active low)
	pressStart    time.Time
	releaseTime   time.Time
	longPressSent bool
}

// NewClassifier creates a classifier for the given input id. Non-positive
// thresholds fall back to the defaults.
func NewClassifier(source int, longPress, doubleClickWindow time.Duration) *Classifier {
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	if doubleClickWindow <= 0 {
		doubleClickWindow = DefaultDoubleClickWindow
	}
	return &Classifier{
		source:      source,
		longPress:   longPress,
		doubleClick: doubleClickWindow,
		state:       Idle,
		lastLevel:   true, // assume released at boot
	}
}

// State returns the current machine state. Diagnostic only.
func (c *Classifier) State() State { return c.state }

// Step consumes one raw level sample taken at now and returns at most one
// event. The input is active low: level false means pressed.
func (c *Classifier) Step(level bool, now time.Time) (Event, bool) {
	fallingEdge := c.lastLevel && !level
	risingEdge := !c.lastLevel && level

	var ev Event
	emitted := false

	switch c.state {
	case Idle:
		if fallingEdge {
			c.pressStart = now
			c.longPressSent = false
			c.state = Pressed
		}

	case Pressed:
		if risingEdge {
			held := now.Sub(c.pressStart)
			if held >= c.longPress {
				// Long press was already reported while held; a long press
				// never re-enters the double-click path.
				c.state = Idle
			} else {
				c.releaseTime = now
				c.state = WaitSecond
			}
		} else if !level {
			if now.Sub(c.pressStart) >= c.longPress && !c.longPressSent {
				ev = Event{Kind: types.LongPress, Source: c.source}
				emitted = true
				c.longPressSent = true
			}
		}

	case WaitSecond:
		if fallingEdge {
			gap := now.Sub(c.releaseTime)
			if gap <= c.doubleClick {
				c.pressStart = now
				c.state = DoublePressed
			} else {
				// Too late for a double click: the prior press resolves to a
				// single click and this press starts over.
				ev = Event{Kind: types.SingleClick, Source: c.source}
				emitted = true
				c.pressStart = now
				c.longPressSent = false
				c.state = Pressed
			}
		} else if level {
			if now.Sub(c.releaseTime) > c.doubleClick {
				ev = Event{Kind: types.SingleClick, Source: c.source}
				emitted = true
				c.state = Idle
			}
		}

	case DoublePressed:
		if risingEdge {
			ev = Event{Kind: types.DoubleClick, Source: c.source}
			emitted = true
			c.state = Idle
		}

	default:
		c.state = Idle
	}

	c.lastLevel = level
	return ev, emitted
}
