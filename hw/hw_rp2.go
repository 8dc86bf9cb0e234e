//go:build rp2040 || rp2350

package hw

import (
	"machine"

	"tinygo.org/x/drivers/servo"

	"doorcore-go/types"
)

// RP2 implementations on machine pins. Mirrors the board wiring of the
// reference hardware: button on an input-pullup pin, LEDs on outputs,
// door servo on a PWM slice.

type ButtonPin struct {
	p machine.Pin
}

func NewButtonPin(pin machine.Pin) *ButtonPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &ButtonPin{p: pin}
}

func (b *ButtonPin) Read() (bool, error) { return b.p.Get(), nil }

type LEDPin struct {
	p machine.Pin
}

func NewLEDPin(pin machine.Pin, initial bool) *LEDPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Set(initial)
	return &LEDPin{p: pin}
}

func (l *LEDPin) Set(level bool) error {
	l.p.Set(level)
	return nil
}

// ServoActuator positions the door horn through a PWM-driven servo.
type ServoActuator struct {
	s servo.Servo
}

// NewServoActuator binds the servo signal pin to its PWM group.
func NewServoActuator(pwm servo.PWM, pin machine.Pin) (*ServoActuator, error) {
	s, err := servo.New(pwm, pin)
	if err != nil {
		return nil, err
	}
	return &ServoActuator{s: s}, nil
}

func (a *ServoActuator) SetPosition(pos types.Position) error {
	// 0-180 degrees over the usual 500-2500us pulse range.
	us := 500 + int16(pos.Clamp())*100/9
	a.s.SetMicroseconds(us)
	return nil
}
