// Package indicator consumes the indicator channel and drives the binary
// status outputs: the red LED toggles on a single click, the green LED on a
// long press, and the optional door LED follows the door state.
package indicator

import (
	"context"

	"doorcore-go/fabric"
	"doorcore-go/hw"
	"doorcore-go/types"
)

// Logical output ids addressable by Indicator messages.
const (
	RedID = iota
	GreenID
	DoorID
)

type Service struct {
	ch *fabric.Channel

	red   hw.OutputPin
	green hw.OutputPin
	door  hw.OutputPin // optional

	redState   bool
	greenState bool
}

// New wires the service. The green LED on the reference board is wired
// active-high and starts lit; the red one starts off.
func New(ch *fabric.Channel, red, green, door hw.OutputPin) *Service {
	return &Service{ch: ch, red: red, green: green, door: door, greenState: true}
}

// Run consumes indicator messages until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	println("[indicator] started")
	for {
		select {
		case <-ctx.Done():
			println("[indicator] stopped")
			return
		case m := <-s.ch.C():
			s.handle(m)
		}
	}
}

func (s *Service) handle(m fabric.Message) {
	switch m.Type {
	case fabric.MsgIndicator:
		if out := s.output(m.Indicator.ID); out != nil {
			s.set(out, m.Indicator.Level)
		} else {
			println("[indicator] unknown output id:", m.Indicator.ID)
		}

	case fabric.MsgGesture:
		switch m.Gesture.Kind {
		case types.SingleClick:
			s.redState = !s.redState
			s.set(s.red, s.redState)
			println("[indicator] single click: red toggled")
		case types.LongPress:
			s.greenState = !s.greenState
			s.set(s.green, s.greenState)
			println("[indicator] long press: green toggled")
		}

	case fabric.MsgDoorState:
		if s.door != nil {
			s.set(s.door, m.State.Open)
		}

	default:
		println("[indicator] unknown message type:", m.Type.String())
	}
}

func (s *Service) output(id int) hw.OutputPin {
	switch id {
	case RedID:
		return s.red
	case GreenID:
		return s.green
	case DoorID:
		return s.door
	default:
		return nil
	}
}

func (s *Service) set(out hw.OutputPin, level bool) {
	if out == nil {
		return
	}
	if err := out.Set(level); err != nil {
		println("[indicator] output failed:", err.Error())
	}
}
