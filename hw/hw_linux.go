//go:build linux && !(rp2040 || rp2350)

package hw

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"doorcore-go/types"
)

// Line implementations backed by the Linux GPIO character device.

// ButtonLine is an input line with the pull-up enabled, matching the
// active-low button wiring (released reads high).
type ButtonLine struct {
	line *gpiocdev.Line
}

// NewButtonLine requests pin on chip (e.g. "gpiochip0") as a pulled-up input.
func NewButtonLine(chip string, pin int) (*ButtonLine, error) {
	l, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	return &ButtonLine{line: l}, nil
}

func (b *ButtonLine) Read() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return true, fmt.Errorf("read button: %w", err)
	}
	return v != 0, nil
}

func (b *ButtonLine) Close() error { return b.line.Close() }

// LEDLine drives one output line.
type LEDLine struct {
	line *gpiocdev.Line
}

func NewLEDLine(chip string, pin int, initial bool) (*LEDLine, error) {
	l, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(boolToInt(initial)))
	if err != nil {
		return nil, fmt.Errorf("request led pin %d: %w", pin, err)
	}
	return &LEDLine{line: l}, nil
}

func (l *LEDLine) Set(level bool) error {
	if err := l.line.SetValue(boolToInt(level)); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

func (l *LEDLine) Close() error { return l.line.Close() }

// RelayActuator drives a two-position latch through a relay line: any
// position at or past the open angle energises the relay.
type RelayActuator struct {
	line *gpiocdev.Line
}

func NewRelayActuator(chip string, pin int) (*RelayActuator, error) {
	l, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	return &RelayActuator{line: l}, nil
}

func (r *RelayActuator) SetPosition(pos types.Position) error {
	// The servo geometry maps lower angles to "open".
	open := 0
	if pos.Clamp() <= types.PosOpen {
		open = 1
	}
	if err := r.line.SetValue(open); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	return nil
}

func (r *RelayActuator) Close() error { return r.line.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
