// adapters/mqttdoor/mqttdoor_test.go
package mqttdoor

import (
	"encoding/json"
	"testing"
	"time"

	"doorcore-go/fabric"
	"doorcore-go/types"
)

func TestParseCommand(t *testing.T) {
	if cmd, err := parseCommand("ON"); err != nil || cmd != types.DoorOpen {
		t.Fatalf("ON: got %v %v", cmd, err)
	}
	if cmd, err := parseCommand("OFF"); err != nil || cmd != types.DoorClose {
		t.Fatalf("OFF: got %v %v", cmd, err)
	}
	if _, err := parseCommand("TOGGLE"); err == nil {
		t.Fatal("unknown payload must error")
	}
}

func TestFormatState(t *testing.T) {
	if formatState(true) != "ON" || formatState(false) != "OFF" {
		t.Fatal("state payloads wrong")
	}
}

func TestTopics(t *testing.T) {
	if got := commandTopic("abc123"); got != "doorcore/abc123/door/set" {
		t.Fatalf("command topic: %s", got)
	}
	if got := stateTopic("abc123"); got != "doorcore/abc123/door/state" {
		t.Fatalf("state topic: %s", got)
	}
	if got := discoveryTopic("abc123"); got != "homeassistant/switch/abc123/door/config" {
		t.Fatalf("discovery topic: %s", got)
	}
}

func TestDiscoveryPayload_IsValidJSON(t *testing.T) {
	var cfg map[string]any
	if err := json.Unmarshal(discoveryPayload("abc123"), &cfg); err != nil {
		t.Fatalf("discovery payload not valid JSON: %v", err)
	}
	if cfg["command_topic"] != "doorcore/abc123/door/set" {
		t.Fatalf("command_topic: %v", cfg["command_topic"])
	}
	if cfg["unique_id"] != "abc123_door" {
		t.Fatalf("unique_id: %v", cfg["unique_id"])
	}
}

func TestHandleCommand_InjectsIntoFabric(t *testing.T) {
	f, _ := fabric.New(4)
	door := f.MustChannel(fabric.ChanDoor)
	a := &Adapter{deviceID: "t", door: door, timeout: 20 * time.Millisecond}

	a.handleCommand("ON")
	m := door.Receive()
	if m.Type != fabric.MsgDoor || m.Door.Cmd != types.DoorOpen {
		t.Fatalf("ON: got %+v", m)
	}

	a.handleCommand("OFF")
	m = door.Receive()
	if m.Door.Cmd != types.DoorClose {
		t.Fatalf("OFF: got %+v", m)
	}
}

func TestHandleCommand_UnknownIgnored(t *testing.T) {
	f, _ := fabric.New(4)
	door := f.MustChannel(fabric.ChanDoor)
	a := &Adapter{deviceID: "t", door: door, timeout: 20 * time.Millisecond}

	a.handleCommand("banana")
	if door.Len() != 0 {
		t.Fatal("unknown payload must not reach the fabric")
	}
}

func TestHandleCommand_FullChannelDoesNotBlock(t *testing.T) {
	f, _ := fabric.New(1)
	door := f.MustChannel(fabric.ChanDoor)
	a := &Adapter{deviceID: "t", door: door, timeout: 10 * time.Millisecond}

	a.handleCommand("ON")
	start := time.Now()
	a.handleCommand("ON") // queue full: dropped after the bounded wait
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("command handler blocked past send timeout")
	}
	if door.Len() != 1 {
		t.Fatalf("expected 1 queued command, got %d", door.Len())
	}
}
