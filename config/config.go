// Package config carries the boot-time options for the door core. Values
// are fixed at startup; nothing here is hot-reloadable.
package config

import (
	"time"

	"doorcore-go/errcode"
	"doorcore-go/types"
)

type Config struct {
	// Input sampling and gesture thresholds.
	SampleInterval    time.Duration
	LongPress         time.Duration
	DoubleClickWindow time.Duration

	// Fabric sizing and backpressure.
	QueueDepth  int
	SendTimeout time.Duration

	// Door behaviour.
	OpenDuration   time.Duration
	OpenPosition   types.Position
	ClosedPosition types.Position

	// Escalation of repeated double clicks into a credential reset.
	EscalationTriggerCount uint8
	EscalationResetTimeout time.Duration
}

// Default returns the reference-hardware configuration.
func Default() Config {
	return Config{
		SampleInterval:         10 * time.Millisecond,
		LongPress:              1000 * time.Millisecond,
		DoubleClickWindow:      300 * time.Millisecond,
		QueueDepth:             10,
		SendTimeout:            100 * time.Millisecond,
		OpenDuration:           5 * time.Second,
		OpenPosition:           types.PosOpen,
		ClosedPosition:         types.PosClosed,
		EscalationTriggerCount: 2,
		EscalationResetTimeout: 3 * time.Second,
	}
}

// Validate rejects configurations the tasks cannot start with. Any error
// here is fatal at initialization.
func (c Config) Validate() error {
	if c.SampleInterval <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "sample interval must be positive"}
	}
	if c.LongPress <= 0 || c.DoubleClickWindow <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "gesture thresholds must be positive"}
	}
	if c.QueueDepth <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "queue depth must be positive"}
	}
	if c.SendTimeout < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "send timeout must not be negative"}
	}
	if c.OpenDuration <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "open duration must be positive"}
	}
	if c.EscalationTriggerCount == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "escalation trigger count must be positive"}
	}
	if c.EscalationResetTimeout <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "escalation reset timeout must be positive"}
	}
	return nil
}
