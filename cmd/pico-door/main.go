//go:build rp2040 || rp2350

// Command pico-door: door controller bring-up for RP2040/Pico.
//
// Build/flash (TinyGo):
//   tinygo flash -target pico ./cmd/pico-door
//
// Wiring assumptions (edit below as needed):
// - Button on GP2, active low, internal pull-up.
// - Red LED on GP11, green LED on GP12.
// - Door servo signal on GP16 (PWM0 slice).
// - UART0 for serial door commands ("ODTC" opens).

package main

import (
	"context"
	"time"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"doorcore-go/adapters/serialcmd"
	"doorcore-go/config"
	"doorcore-go/fabric"
	"doorcore-go/gesture"
	"doorcore-go/hw"
	"doorcore-go/route"
	"doorcore-go/services/door"
	"doorcore-go/services/indicator"
)

const (
	buttonPin = machine.GPIO2
	redPin    = machine.GPIO11
	greenPin  = machine.GPIO12
	servoPin  = machine.GPIO16
)

// uartPort adapts uartx to the adapter's io.ReadWriter.
type uartPort struct {
	ctx context.Context
	u   *uartx.UART
}

func (p *uartPort) Read(b []byte) (int, error)  { return p.u.RecvSomeContext(p.ctx, b) }
func (p *uartPort) Write(b []byte) (int, error) { return p.u.Write(b) }

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("== doorcore: Pico bring-up ==")

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		println("config invalid:", err.Error())
		return
	}

	f, err := fabric.New(cfg.QueueDepth)
	if err != nil {
		println("fabric init failed:", err.Error())
		return
	}
	indicatorCh := f.MustChannel(fabric.ChanIndicator)
	doorCh := f.MustChannel(fabric.ChanDoor)
	credsCh := f.MustChannel(fabric.ChanCredentials)

	ctx := context.Background()

	// Hardware.
	button := hw.NewButtonPin(buttonPin)
	red := hw.NewLEDPin(redPin, false)
	green := hw.NewLEDPin(greenPin, true)
	servo, err := hw.NewServoActuator(machine.PWM0, servoPin)
	if err != nil {
		println("servo init failed:", err.Error())
		return
	}

	// Serial command ingress on UART0.
	_ = uartx.UART0.Configure(uartx.UARTConfig{BaudRate: 115200})
	port := &uartPort{ctx: ctx, u: uartx.UART0}
	go serialcmd.New(port, doorCh, cfg.SendTimeout).Run(ctx)

	// Core tasks.
	classifier := gesture.NewClassifier(int(buttonPin), cfg.LongPress, cfg.DoubleClickWindow)
	router := route.NewRouter(indicatorCh, doorCh, cfg.SendTimeout)
	go gesture.NewScanner(button, classifier, router, cfg.SampleInterval).Run(ctx)

	// No external collaborator on this build; state still reaches the
	// indicator consumer.
	go door.New(cfg, servo, doorCh, indicatorCh, credsCh, nil).Run(ctx)
	go indicator.New(indicatorCh, red, green, nil).Run(ctx)

	// Provisioning is not wired on the Pico build; log resets and move on.
	for m := range credsCh.C() {
		if m.Type == fabric.MsgNet {
			println("credential reset requested, provisioning not wired")
		}
	}
}
