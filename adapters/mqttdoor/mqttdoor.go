// Package mqttdoor integrates the door with Home Assistant over MQTT: it
// subscribes to the door switch command topic and injects the resulting
// commands into the fabric, and it publishes door state changes consumed
// from the external channel. The fabric cannot tell these commands apart
// from button-originated ones; that uniformity is the point.
package mqttdoor

import (
	"context"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"doorcore-go/errcode"
	"doorcore-go/fabric"
	"doorcore-go/types"
)

const (
	payloadOn  = "ON"
	payloadOff = "OFF"

	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Topics derive from the device id the way the reference firmware names
// them.
func commandTopic(deviceID string) string { return "doorcore/" + deviceID + "/door/set" }
func stateTopic(deviceID string) string   { return "doorcore/" + deviceID + "/door/state" }
func discoveryTopic(deviceID string) string {
	return "homeassistant/switch/" + deviceID + "/door/config"
}

// discoveryPayload is the retained Home Assistant MQTT discovery config.
func discoveryPayload(deviceID string) []byte {
	return []byte(fmt.Sprintf(
		`{"name":"Door","unique_id":"%s_door","command_topic":"%s","state_topic":"%s","payload_on":"ON","payload_off":"OFF","optimistic":false,"qos":1,"retain":false}`,
		deviceID, commandTopic(deviceID), stateTopic(deviceID)))
}

// parseCommand maps a command payload onto a door command.
func parseCommand(payload string) (types.DoorCommand, error) {
	switch payload {
	case payloadOn:
		return types.DoorOpen, nil
	case payloadOff:
		return types.DoorClose, nil
	default:
		return 0, &errcode.E{C: errcode.UnknownMessage, Op: "mqttdoor", Msg: "payload " + payload}
	}
}

// formatState maps door state onto the state payload.
func formatState(open bool) string {
	if open {
		return payloadOn
	}
	return payloadOff
}

// Adapter is the MQTT collaborator. It produces into the door channel and
// is the sole consumer of the external channel.
type Adapter struct {
	client   paho.Client
	deviceID string
	door     *fabric.Channel
	external *fabric.Channel
	timeout  time.Duration
}

// New connects to the broker and wires the command subscription. The
// subscription and the retained discovery config are re-established on
// every reconnect.
func New(broker, deviceID string, door, external *fabric.Channel, sendTimeout time.Duration) (*Adapter, error) {
	a := &Adapter{
		deviceID: deviceID,
		door:     door,
		external: external,
		timeout:  sendTimeout,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("doorcore-" + deviceID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(a.onConnect)

	a.client = paho.NewClient(opts)
	token := a.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return a, nil
}

func (a *Adapter) onConnect(c paho.Client) {
	log.Printf("mqttdoor: connected, subscribing to %s", commandTopic(a.deviceID))
	if t := c.Subscribe(commandTopic(a.deviceID), 1, a.onCommand); t.WaitTimeout(publishTimeout) && t.Error() != nil {
		log.Printf("mqttdoor: subscribe failed: %v", t.Error())
	}
	if t := c.Publish(discoveryTopic(a.deviceID), 1, true, discoveryPayload(a.deviceID)); t.WaitTimeout(publishTimeout) && t.Error() != nil {
		log.Printf("mqttdoor: discovery publish failed: %v", t.Error())
	}
}

func (a *Adapter) onCommand(_ paho.Client, msg paho.Message) {
	a.handleCommand(string(msg.Payload()))
}

// handleCommand is the paho-free core of command ingress, split out for
// testing.
func (a *Adapter) handleCommand(payload string) {
	cmd, err := parseCommand(payload)
	if err != nil {
		log.Printf("mqttdoor: ignoring command: %v", err)
		return
	}
	m := fabric.Message{Type: fabric.MsgDoor, Door: fabric.DoorData{Cmd: cmd}}
	if err := a.door.Send(m, a.timeout); err != nil {
		log.Printf("mqttdoor: %s command dropped: %v", payload, err)
	}
}

// Run consumes door state notifications and publishes them until ctx is
// cancelled.
func (a *Adapter) Run(ctx context.Context) {
	// Initial state so the switch shows up sanely in Home Assistant.
	a.publishState(false)

	for {
		select {
		case <-ctx.Done():
			a.client.Disconnect(1000)
			return
		case m := <-a.external.C():
			if m.Type != fabric.MsgDoorState {
				log.Printf("mqttdoor: ignoring message type %s", m.Type)
				continue
			}
			a.publishState(m.State.Open)
		}
	}
}

func (a *Adapter) publishState(open bool) {
	t := a.client.Publish(stateTopic(a.deviceID), 1, true, formatState(open))
	if !t.WaitTimeout(publishTimeout) {
		log.Printf("mqttdoor: state publish timeout")
		return
	}
	if err := t.Error(); err != nil {
		log.Printf("mqttdoor: state publish failed: %v", err)
	}
}
