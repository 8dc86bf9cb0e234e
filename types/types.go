package types

// ---- Gestures ----

// GestureKind is a classified button interaction.
type GestureKind uint8

const (
	SingleClick GestureKind = iota
	DoubleClick
	LongPress
)

func (k GestureKind) String() string {
	switch k {
	case SingleClick:
		return "single_click"
	case DoubleClick:
		return "double_click"
	case LongPress:
		return "long_press"
	default:
		return "unknown"
	}
}

// ---- Door commands ----

// DoorCommand is an actuator-channel command. External adapters enqueue the
// same commands that internal routing does; consumers cannot tell them apart.
type DoorCommand uint8

const (
	DoorOpen DoorCommand = iota
	DoorClose
	DoorSetPosition
)

func (c DoorCommand) String() string {
	switch c {
	case DoorOpen:
		return "open"
	case DoorClose:
		return "close"
	case DoorSetPosition:
		return "set_position"
	default:
		return "unknown"
	}
}

// ---- Network commands ----

type NetCommand uint8

const (
	ClearCredentials NetCommand = iota
)

// ---- Actuator position ----

// Position is a servo angle in degrees (0-180).
type Position uint8

// Door positions from the reference hardware: the horn sits at 135 degrees
// when the latch is closed and 80 degrees when open.
const (
	PosClosed Position = 135
	PosOpen   Position = 80
)

// Clamp limits a position to the servo's travel.
func (p Position) Clamp() Position {
	if p > 180 {
		return 180
	}
	return p
}
