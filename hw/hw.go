// Package hw abstracts the digital pins and the door actuator. Real
// implementations live behind build tags (Linux gpio character device,
// RP2 machine pins + servo); fakes are exported for tests.
package hw

import "doorcore-go/types"

// InputPin reads a raw digital level. For the door button the level is
// active low: true means released, false means pressed.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin drives a binary output such as an indicator LED.
type OutputPin interface {
	Set(level bool) error
}

// Actuator moves the door mechanism to a fixed position.
type Actuator interface {
	SetPosition(pos types.Position) error
}
