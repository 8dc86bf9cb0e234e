// services/door/door_test.go
package door

import (
	"context"
	"testing"
	"time"

	"doorcore-go/config"
	"doorcore-go/fabric"
	"doorcore-go/hw"
	"doorcore-go/types"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.OpenDuration = 60 * time.Millisecond
	cfg.SendTimeout = 10 * time.Millisecond
	cfg.EscalationResetTimeout = 80 * time.Millisecond
	return cfg
}

type rig struct {
	cfg    config.Config
	act    *hw.FakeActuator
	doorCh *fabric.Channel
	ind    *fabric.Channel
	creds  *fabric.Channel
	ext    *fabric.Channel
	cancel context.CancelFunc
}

func startRig(t *testing.T, cfg config.Config) *rig {
	t.Helper()
	f, err := fabric.New(cfg.QueueDepth)
	if err != nil {
		t.Fatal(err)
	}
	r := &rig{
		cfg:    cfg,
		act:    &hw.FakeActuator{},
		doorCh: f.MustChannel(fabric.ChanDoor),
		ind:    f.MustChannel(fabric.ChanIndicator),
		creds:  f.MustChannel(fabric.ChanCredentials),
		ext:    f.MustChannel(fabric.ChanExternal),
	}
	c := New(cfg, r.act, r.doorCh, r.ind, r.creds, r.ext)
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	t.Cleanup(cancel)
	go c.Run(ctx)

	// The coordinator moves to the closed position on startup.
	waitFor(t, func() bool { return r.act.Count() >= 1 })
	return r
}

func (r *rig) doubleClick(t *testing.T) {
	t.Helper()
	m := fabric.Message{Type: fabric.MsgGesture, Gesture: fabric.GestureData{Kind: types.DoubleClick}}
	if err := r.doorCh.Send(m, 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func (r *rig) command(t *testing.T, cmd types.DoorCommand, pos types.Position) {
	t.Helper()
	m := fabric.Message{Type: fabric.MsgDoor, Door: fabric.DoorData{Cmd: cmd, Pos: pos}}
	if err := r.doorCh.Send(m, 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func expectState(t *testing.T, ch *fabric.Channel, open bool) {
	t.Helper()
	select {
	case m := <-ch.C():
		if m.Type != fabric.MsgDoorState || m.State.Open != open {
			t.Fatalf("expected state open=%v, got %+v", open, m)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for state open=%v", open)
	}
}

func expectNoMsg(t *testing.T, ch *fabric.Channel, wait time.Duration) {
	t.Helper()
	select {
	case m := <-ch.C():
		t.Fatalf("unexpected message %+v", m)
	case <-time.After(wait):
	}
}

func TestTrigger_OpensAndAutoReverts(t *testing.T) {
	r := startRig(t, testConfig())

	r.doubleClick(t)
	expectState(t, r.ind, true)
	expectState(t, r.ext, true)
	waitFor(t, func() bool { return r.act.Last(0) == r.cfg.OpenPosition })

	// No close arrives: exactly one automatic closed notification.
	expectState(t, r.ind, false)
	expectState(t, r.ext, false)
	waitFor(t, func() bool { return r.act.Last(0) == r.cfg.ClosedPosition })
	expectNoMsg(t, r.ind, 2*r.cfg.OpenDuration)
}

func TestTrigger_ReArmWhileOpen(t *testing.T) {
	r := startRig(t, testConfig())

	r.doubleClick(t)
	expectState(t, r.ind, true)

	// Re-trigger half way through: the deadline restarts, no second "open"
	// notification because the door is already open.
	time.Sleep(r.cfg.OpenDuration / 2)
	r.doubleClick(t)
	expectNoMsg(t, r.ind, 3*r.cfg.OpenDuration/4)

	// The revert then fires once, off the renewed deadline.
	expectState(t, r.ind, false)
}

func TestClose_CancelsRevert(t *testing.T) {
	r := startRig(t, testConfig())

	r.doubleClick(t)
	expectState(t, r.ind, true)

	r.command(t, types.DoorClose, 0)
	expectState(t, r.ind, false)
	waitFor(t, func() bool { return r.act.Last(0) == r.cfg.ClosedPosition })

	// The cancelled timer path must not emit a second closed notification.
	expectNoMsg(t, r.ind, 2*r.cfg.OpenDuration)
}

func TestClose_WhenAlreadyClosedIsNoop(t *testing.T) {
	r := startRig(t, testConfig())

	r.command(t, types.DoorClose, 0)
	expectNoMsg(t, r.ind, 40*time.Millisecond)
}

func TestExternalOpen_TriggersWithoutEscalation(t *testing.T) {
	r := startRig(t, testConfig())

	r.command(t, types.DoorOpen, 0)
	expectState(t, r.ind, true)
	r.command(t, types.DoorOpen, 0)
	r.command(t, types.DoorOpen, 0)

	// Injected opens never feed the escalation counter.
	expectNoMsg(t, r.creds, 60*time.Millisecond)
}

func TestSetPosition_PassThrough(t *testing.T) {
	r := startRig(t, testConfig())

	r.command(t, types.DoorSetPosition, 42)
	waitFor(t, func() bool { return r.act.Last(0) == 42 })
	expectNoMsg(t, r.ind, 30*time.Millisecond)
}

func TestEscalation_FiresOnSecondDoubleClick(t *testing.T) {
	r := startRig(t, testConfig())

	r.doubleClick(t)
	expectNoMsg(t, r.creds, 20*time.Millisecond)

	r.doubleClick(t)
	select {
	case m := <-r.creds.C():
		if m.Type != fabric.MsgNet || m.Net.Cmd != types.ClearCredentials {
			t.Fatalf("expected clear credentials, got %+v", m)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for credential command")
	}

	// Counter reset: a third double click alone does not fire again.
	r.doubleClick(t)
	expectNoMsg(t, r.creds, 60*time.Millisecond)
}

func TestEscalation_GapResetsCounter(t *testing.T) {
	r := startRig(t, testConfig())

	r.doubleClick(t)
	// Wait past the reset timeout, then click again: the counter restarts
	// at one, so nothing fires.
	time.Sleep(r.cfg.EscalationResetTimeout + 20*time.Millisecond)
	r.doubleClick(t)
	expectNoMsg(t, r.creds, 60*time.Millisecond)

	// The next one pairs with it and fires.
	r.doubleClick(t)
	select {
	case m := <-r.creds.C():
		if m.Net.Cmd != types.ClearCredentials {
			t.Fatalf("expected clear credentials, got %+v", m)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for credential command")
	}
}

func TestUnknownMessage_Ignored(t *testing.T) {
	r := startRig(t, testConfig())

	_ = r.doorCh.Send(fabric.Message{Type: fabric.MsgType(99)}, 10*time.Millisecond)
	_ = r.doorCh.Send(fabric.Message{Type: fabric.MsgIndicator}, 10*time.Millisecond)

	// The loop keeps consuming afterwards.
	r.doubleClick(t)
	expectState(t, r.ind, true)
}

func TestBackpressure_DoesNotBlockCoordinator(t *testing.T) {
	cfg := testConfig()
	cfg.QueueDepth = 1
	cfg.SendTimeout = 5 * time.Millisecond
	r := startRig(t, cfg)

	// Nobody drains the indicator or external channels; fill them.
	_ = r.ind.Send(fabric.Message{Type: fabric.MsgIndicator}, 0)
	_ = r.ext.Send(fabric.Message{Type: fabric.MsgDoorState}, 0)

	// State transitions still happen even though every notify is dropped.
	r.doubleClick(t)
	waitFor(t, func() bool { return r.act.Last(0) == r.cfg.OpenPosition })
	r.command(t, types.DoorClose, 0)
	waitFor(t, func() bool { return r.act.Last(0) == r.cfg.ClosedPosition })
}

func TestCounter_Bump(t *testing.T) {
	e := counter{trigger: 2, timeout: 100 * time.Millisecond}
	base := time.Unix(0, 0)

	if e.bump(base) {
		t.Fatal("first bump must not fire")
	}
	if !e.bump(base.Add(50 * time.Millisecond)) {
		t.Fatal("second bump within window must fire")
	}
	if e.count != 0 {
		t.Fatalf("counter must reset after firing, got %d", e.count)
	}

	// Gap at the timeout boundary resets before counting.
	if e.bump(base.Add(200 * time.Millisecond)) {
		t.Fatal("bump after reset must not fire")
	}
	if e.bump(base.Add(400 * time.Millisecond)) {
		t.Fatal("stale counter must have been reset to one, not two")
	}
	if !e.bump(base.Add(450 * time.Millisecond)) {
		t.Fatal("pair within window must fire")
	}
}
