// fabric.go
package fabric

import (
	"time"

	"doorcore-go/errcode"
	"doorcore-go/types"
)

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

// MsgType is the discriminant of a Message. Exactly one payload field is
// valid for a given type; messages are copied by value on send and receive,
// so ownership transfers with the copy and nothing is aliased across tasks.
type MsgType uint8

const (
	MsgNone MsgType = iota
	MsgIndicator
	MsgGesture
	MsgDoor
	MsgNet
	MsgDoorState
	msgMax
)

func (t MsgType) Valid() bool { return t > MsgNone && t < msgMax }

func (t MsgType) String() string {
	switch t {
	case MsgIndicator:
		return "indicator"
	case MsgGesture:
		return "gesture"
	case MsgDoor:
		return "door"
	case MsgNet:
		return "net"
	case MsgDoorState:
		return "door_state"
	default:
		return "none"
	}
}

// IndicatorData sets a binary indicator output.
type IndicatorData struct {
	ID    int
	Level bool
}

// GestureData is a classified button event and its source input.
type GestureData struct {
	Source int
	Kind   types.GestureKind
}

// DoorData is an actuator command. Pos is only meaningful for SetPosition.
type DoorData struct {
	Cmd types.DoorCommand
	Pos types.Position
}

// NetData is a privileged network-subsystem command.
type NetData struct {
	Cmd types.NetCommand
}

// DoorStateData is a state-changed notification for external collaborators.
type DoorStateData struct {
	Open bool
}

// Message is the single wire type carried by every channel.
type Message struct {
	Type      MsgType
	Indicator IndicatorData
	Gesture   GestureData
	Door      DoorData
	Net       NetData
	State     DoorStateData
}

// -----------------------------------------------------------------------------
// Channels
// -----------------------------------------------------------------------------

// ChannelID names one of the fixed consumer-domain channels.
type ChannelID uint8

const (
	ChanIndicator ChannelID = iota
	ChanDoor
	ChanCredentials
	ChanExternal
	chanMax
)

func (id ChannelID) String() string {
	switch id {
	case ChanIndicator:
		return "indicator"
	case ChanDoor:
		return "door"
	case ChanCredentials:
		return "credentials"
	case ChanExternal:
		return "external"
	default:
		return "invalid"
	}
}

// Channel is a bounded FIFO of Message with exactly one consuming task.
// Multiple producers may Send concurrently; the fabric serializes them.
type Channel struct {
	id ChannelID
	ch chan Message
}

func (c *Channel) ID() ChannelID { return c.id }

// Send enqueues a copy of m, blocking up to timeout if the channel is full.
// On expiry the message is dropped and errcode.Timeout returned; the caller
// decides whether that matters. Send never blocks past timeout.
func (c *Channel) Send(m Message, timeout time.Duration) error {
	select {
	case c.ch <- m:
		return nil
	default:
	}
	if timeout <= 0 {
		return errcode.Timeout
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c.ch <- m:
		return nil
	case <-t.C:
		return errcode.Timeout
	}
}

// Receive blocks until a message is available and returns it in FIFO order.
// Only the channel's designated consumer task may call this.
func (c *Channel) Receive() Message { return <-c.ch }

// C exposes the receive side for use in a consumer's select loop. The
// single-consumer contract still applies.
func (c *Channel) C() <-chan Message { return c.ch }

// Len reports the number of queued messages. Diagnostic only.
func (c *Channel) Len() int { return len(c.ch) }

// -----------------------------------------------------------------------------
// Fabric
// -----------------------------------------------------------------------------

// Fabric owns the fixed set of channels. It is created once at startup and
// never resized; it holds no business logic.
type Fabric struct {
	chans [chanMax]*Channel
}

// New creates all channels with the given queue depth.
func New(depth int) (*Fabric, error) {
	if depth <= 0 {
		return nil, errcode.InvalidParams
	}
	f := &Fabric{}
	for i := ChannelID(0); i < chanMax; i++ {
		f.chans[i] = &Channel{id: i, ch: make(chan Message, depth)}
	}
	return f, nil
}

// Channel returns the handle for id.
func (f *Fabric) Channel(id ChannelID) (*Channel, error) {
	if id >= chanMax {
		return nil, errcode.UnknownChannel
	}
	return f.chans[id], nil
}

// MustChannel is for wiring code where the id is a compile-time constant.
func (f *Fabric) MustChannel(id ChannelID) *Channel {
	c, err := f.Channel(id)
	if err != nil {
		panic(err)
	}
	return c
}
