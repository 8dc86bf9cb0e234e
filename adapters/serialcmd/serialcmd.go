// Package serialcmd accepts door commands over a byte stream (UART or
// Bluetooth serial bridge). The only recognised command is the 4-byte
// "ODTC" open-door token; it is matched across read boundaries, so a
// command fragmented over several reads still triggers.
package serialcmd

import (
	"context"
	"io"
	"time"

	"doorcore-go/fabric"
	"doorcore-go/types"
)

const openCommand = "ODTC"

var (
	respOK    = []byte("OK\r\n")
	respError = []byte("ERROR\r\n")
)

// Adapter bridges a serial port into the fabric. It is a producer only;
// the door channel's consumer stays the coordinator.
type Adapter struct {
	port    io.ReadWriter
	door    *fabric.Channel
	timeout time.Duration

	// Rolling tail of received bytes, long enough to hold the command.
	tail [len(openCommand)]byte
	n    int
}

func New(port io.ReadWriter, door *fabric.Channel, sendTimeout time.Duration) *Adapter {
	return &Adapter{port: port, door: door, timeout: sendTimeout}
}

// Run reads from the port until it fails or ctx is cancelled. Each detected
// command is acknowledged on the same port.
func (a *Adapter) Run(ctx context.Context) {
	buf := make([]byte, 64)
	println("[serialcmd] started")
	for {
		if ctx.Err() != nil {
			println("[serialcmd] stopped")
			return
		}
		n, err := a.port.Read(buf)
		if n > 0 {
			a.feed(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				println("[serialcmd] read failed:", err.Error())
			}
			println("[serialcmd] stopped")
			return
		}
	}
}

// feed scans incoming bytes for the command token.
func (a *Adapter) feed(data []byte) {
	for _, b := range data {
		if a.n == len(a.tail) {
			copy(a.tail[:], a.tail[1:])
			a.n--
		}
		a.tail[a.n] = b
		a.n++
		if a.n == len(openCommand) && string(a.tail[:]) == openCommand {
			a.openDoor()
			a.n = 0
		}
	}
}

func (a *Adapter) openDoor() {
	if a.door == nil {
		println("[serialcmd] door channel not wired")
		a.respond(respError)
		return
	}
	m := fabric.Message{Type: fabric.MsgDoor, Door: fabric.DoorData{Cmd: types.DoorOpen}}
	if err := a.door.Send(m, a.timeout); err != nil {
		println("[serialcmd] open command dropped:", err.Error())
		a.respond(respError)
		return
	}
	println("[serialcmd] open command accepted")
	a.respond(respOK)
}

func (a *Adapter) respond(b []byte) {
	if _, err := a.port.Write(b); err != nil {
		println("[serialcmd] response failed:", err.Error())
	}
}
