// Package door is the actuator coordinator task: it consumes the door
// channel, drives the two-position actuator, arms the auto-revert timer and
// escalates repeated double clicks into a credential reset.
package door

import (
	"context"
	"time"

	"doorcore-go/config"
	"doorcore-go/fabric"
	"doorcore-go/hw"
	"doorcore-go/types"
)

// Coordinator owns all door state. It runs as a single task; the revert
// timer fires into the same select loop that processes cancellations, so a
// cancel observed before the deadline always wins and a raced expiry is
// drained, never acted on.
type Coordinator struct {
	cfg config.Config
	act hw.Actuator

	doorCh    *fabric.Channel
	indicator *fabric.Channel // optional
	creds     *fabric.Channel // optional
	external  *fabric.Channel // optional

	open        bool
	timer       *time.Timer
	timerArmed  bool
	escalation  counter
	now         func() time.Time
}

// New wires the coordinator. doorCh is required; the other handles are
// optional collaborators and may be nil.
func New(cfg config.Config, act hw.Actuator, doorCh, indicator, creds, external *fabric.Channel) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		act:       act,
		doorCh:    doorCh,
		indicator: indicator,
		creds:     creds,
		external:  external,
		escalation: counter{
			trigger: cfg.EscalationTriggerCount,
			timeout: cfg.EscalationResetTimeout,
		},
		now: time.Now,
	}
}

// Open reports whether the door is currently open. Diagnostic only; the
// coordinator task is the sole mutator.
func (c *Coordinator) Open() bool { return c.open }

// Run consumes door messages until ctx is cancelled. It starts from the
// closed position.
func (c *Coordinator) Run(ctx context.Context) {
	if err := c.act.SetPosition(c.cfg.ClosedPosition); err != nil {
		println("[door] initial position failed:", err.Error())
	}

	c.timer = time.NewTimer(time.Hour)
	c.disarmTimer()
	defer c.timer.Stop()

	println("[door] coordinator started")
	for {
		select {
		case <-ctx.Done():
			println("[door] coordinator stopped")
			return
		case m := <-c.doorCh.C():
			c.handle(m)
		case <-c.timer.C:
			c.timerArmed = false
			c.onRevert()
		}
	}
}

func (c *Coordinator) handle(m fabric.Message) {
	switch m.Type {
	case fabric.MsgGesture:
		if m.Gesture.Kind != types.DoubleClick {
			return
		}
		c.trigger()
		c.escalate()

	case fabric.MsgDoor:
		switch m.Door.Cmd {
		case types.DoorOpen:
			// Externally injected opens do not feed the escalation counter.
			c.trigger()
		case types.DoorClose:
			c.close()
		case types.DoorSetPosition:
			if err := c.act.SetPosition(m.Door.Pos); err != nil {
				println("[door] set position failed:", err.Error())
			}
		default:
			println("[door] unknown door command:", int(m.Door.Cmd))
		}

	default:
		println("[door] unknown message type:", m.Type.String())
	}
}

// trigger opens the door (or re-arms the revert deadline if already open).
func (c *Coordinator) trigger() {
	if !c.open {
		c.open = true
		if err := c.act.SetPosition(c.cfg.OpenPosition); err != nil {
			println("[door] open failed:", err.Error())
		}
		c.notifyState()
	}
	// Re-arming replaces any prior deadline.
	c.disarmTimer()
	c.timer.Reset(c.cfg.OpenDuration)
	c.timerArmed = true
}

// onRevert handles the auto-close deadline.
func (c *Coordinator) onRevert() {
	if !c.open {
		return
	}
	c.open = false
	if err := c.act.SetPosition(c.cfg.ClosedPosition); err != nil {
		println("[door] revert failed:", err.Error())
	}
	println("[door] auto-revert fired")
	c.notifyState()
}

// close handles an explicit close command: the revert deadline is cancelled
// before the position changes, so the timer path cannot double-notify.
func (c *Coordinator) close() {
	c.disarmTimer()
	if !c.open {
		return
	}
	c.open = false
	if err := c.act.SetPosition(c.cfg.ClosedPosition); err != nil {
		println("[door] close failed:", err.Error())
	}
	c.notifyState()
}

// disarmTimer stops and drains the revert timer so a stale expiry can never
// be observed after a cancellation.
func (c *Coordinator) disarmTimer() {
	if !c.timer.Stop() && c.timerArmed {
		select {
		case <-c.timer.C:
		default:
		}
	}
	c.timerArmed = false
}

// escalate feeds one gesture-originated trigger into the counter and emits
// the credential reset when the threshold is reached.
func (c *Coordinator) escalate() {
	if !c.escalation.bump(c.now()) {
		return
	}
	println("[door] escalation threshold reached, clearing credentials")
	if c.creds == nil {
		println("[door] credentials channel not wired, skipping")
		return
	}
	m := fabric.Message{Type: fabric.MsgNet, Net: fabric.NetData{Cmd: types.ClearCredentials}}
	if err := c.creds.Send(m, c.cfg.SendTimeout); err != nil {
		println("[door] credential command dropped:", err.Error())
	}
}

// notifyState publishes the state change to the indicator consumer and to
// the external collaborator. A failed or unwired send never blocks or
// rolls back the position change.
func (c *Coordinator) notifyState() {
	m := fabric.Message{Type: fabric.MsgDoorState, State: fabric.DoorStateData{Open: c.open}}
	if c.indicator != nil {
		if err := c.indicator.Send(m, c.cfg.SendTimeout); err != nil {
			println("[door] indicator notify dropped:", err.Error())
		}
	}
	if c.external != nil {
		if err := c.external.Send(m, c.cfg.SendTimeout); err != nil {
			println("[door] external notify dropped:", err.Error())
		}
	}
}

// -----------------------------------------------------------------------------
// Escalation counter
// -----------------------------------------------------------------------------

// counter promotes repeated double clicks within a window into one
// privileged command. It is owned by the coordinator task.
type counter struct {
	count   uint8
	last    time.Time
	trigger uint8
	timeout time.Duration
}

// bump registers one occurrence at now and reports whether the threshold
// was reached. An inter-arrival gap at or past the timeout restarts the
// count before this occurrence is added. Reaching the threshold resets the
// counter to zero.
func (e *counter) bump(now time.Time) bool {
	if e.count > 0 && now.Sub(e.last) >= e.timeout {
		e.count = 0
	}
	e.count++
	e.last = now
	println("[door] double click count:", int(e.count), "/", int(e.trigger))
	if e.count >= e.trigger {
		e.count = 0
		e.last = time.Time{}
		return true
	}
	return false
}
