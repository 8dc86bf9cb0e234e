//go:build linux && !(rp2040 || rp2350)

// Command doorcore runs the door controller on a Linux SBC: button and
// LEDs on the GPIO character device, door on a relay line, Home Assistant
// integration over MQTT.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"doorcore-go/adapters/mqttdoor"
	"doorcore-go/config"
	"doorcore-go/fabric"
	"doorcore-go/gesture"
	"doorcore-go/hw"
	"doorcore-go/route"
	"doorcore-go/services/door"
	"doorcore-go/services/indicator"
)

func main() {
	var (
		chip     = flag.String("chip", "gpiochip0", "gpio chip device name")
		keyPin   = flag.Int("key-pin", 2, "button input pin (active low)")
		redPin   = flag.Int("red-pin", 11, "red LED output pin")
		greenPin = flag.Int("green-pin", 12, "green LED output pin")
		relayPin = flag.Int("relay-pin", 17, "door relay output pin")
		broker   = flag.String("broker", "", "mqtt broker url, e.g. tcp://host:1883 (empty disables)")
		deviceID = flag.String("device-id", "door0", "mqtt device id")
	)
	flag.Parse()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	f, err := fabric.New(cfg.QueueDepth)
	if err != nil {
		log.Fatalf("fabric: %v", err)
	}
	indicatorCh := f.MustChannel(fabric.ChanIndicator)
	doorCh := f.MustChannel(fabric.ChanDoor)
	credsCh := f.MustChannel(fabric.ChanCredentials)
	externalCh := f.MustChannel(fabric.ChanExternal)

	// Hardware.
	button, err := hw.NewButtonLine(*chip, *keyPin)
	if err != nil {
		log.Fatalf("button: %v", err)
	}
	defer button.Close()
	red, err := hw.NewLEDLine(*chip, *redPin, false)
	if err != nil {
		log.Fatalf("red led: %v", err)
	}
	defer red.Close()
	green, err := hw.NewLEDLine(*chip, *greenPin, true)
	if err != nil {
		log.Fatalf("green led: %v", err)
	}
	defer green.Close()
	relay, err := hw.NewRelayActuator(*chip, *relayPin)
	if err != nil {
		log.Fatalf("relay: %v", err)
	}
	defer relay.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tasks.
	classifier := gesture.NewClassifier(*keyPin, cfg.LongPress, cfg.DoubleClickWindow)
	router := route.NewRouter(indicatorCh, doorCh, cfg.SendTimeout)
	scanner := gesture.NewScanner(button, classifier, router, cfg.SampleInterval)
	go scanner.Run(ctx)

	coordinator := door.New(cfg, relay, doorCh, indicatorCh, credsCh, externalCh)
	go coordinator.Run(ctx)

	go indicator.New(indicatorCh, red, green, nil).Run(ctx)

	// The provisioning subsystem is a collaborator; here credential resets
	// just get logged.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-credsCh.C():
				if m.Type == fabric.MsgNet {
					log.Printf("credential reset requested (cmd %d); provisioning not wired on this build", m.Net.Cmd)
				}
			}
		}
	}()

	if *broker != "" {
		mq, err := mqttdoor.New(*broker, *deviceID, doorCh, externalCh, cfg.SendTimeout)
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		go mq.Run(ctx)
	} else {
		// Nobody consumes the external channel without MQTT; drain it so
		// state notifications don't pile up against the send timeout.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-externalCh.C():
				}
			}
		}()
	}

	log.Printf("doorcore running (chip=%s key=%d)", *chip, *keyPin)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Print("shutting down")
	cancel()
}
