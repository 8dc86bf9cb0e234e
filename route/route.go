// Package route holds the static policy mapping classified gestures onto
// fabric channels. Externally injected commands use the same Message shape
// and the same channels, so consumers cannot tell a button-originated event
// from a network-originated one. That uniformity is deliberate.
package route

import (
	"time"

	"doorcore-go/fabric"
	"doorcore-go/gesture"
	"doorcore-go/types"
)

// Targets returns the channels a gesture kind is delivered to. Single and
// long presses feed the indicator consumer; a double click is the door
// trigger.
func Targets(kind types.GestureKind) []fabric.ChannelID {
	switch kind {
	case types.SingleClick, types.LongPress:
		return []fabric.ChannelID{fabric.ChanIndicator}
	case types.DoubleClick:
		return []fabric.ChannelID{fabric.ChanDoor}
	default:
		return nil
	}
}

// Router dispatches gesture events into the fabric. Channel handles are
// injected at construction; a nil handle means that collaborator is not
// wired and sends to it are skipped.
type Router struct {
	indicator *fabric.Channel
	door      *fabric.Channel
	timeout   time.Duration
}

func NewRouter(indicator, door *fabric.Channel, sendTimeout time.Duration) *Router {
	return &Router{indicator: indicator, door: door, timeout: sendTimeout}
}

func (r *Router) channel(id fabric.ChannelID) *fabric.Channel {
	switch id {
	case fabric.ChanIndicator:
		return r.indicator
	case fabric.ChanDoor:
		return r.door
	default:
		return nil
	}
}

// Dispatch sends ev to every target channel. A full channel drops the event
// after the bounded wait; losing an input gesture under backpressure is an
// accepted tradeoff, so the failure is logged and not propagated.
func (r *Router) Dispatch(ev gesture.Event) {
	m := fabric.Message{
		Type:    fabric.MsgGesture,
		Gesture: fabric.GestureData{Source: ev.Source, Kind: ev.Kind},
	}
	for _, id := range Targets(ev.Kind) {
		ch := r.channel(id)
		if ch == nil {
			println("[route] no channel wired:", id.String())
			continue
		}
		if err := ch.Send(m, r.timeout); err != nil {
			println("[route] dropped", ev.Kind.String(), "on", id.String(), "err:", err.Error())
		}
	}
}
