package hw

import (
	"sync"

	"doorcore-go/types"
)

// FakeInput is a test double that returns scripted levels. When the script
// is exhausted it keeps returning the last level.
type FakeInput struct {
	mu     sync.Mutex
	levels []bool
	index  int
	err    error
}

// NewFakeInput creates a FakeInput with the given scripted levels.
func NewFakeInput(levels ...bool) *FakeInput {
	return &FakeInput{levels: levels}
}

// Read returns the next scripted level.
func (f *FakeInput) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return true, f.err
	}
	if len(f.levels) == 0 {
		return true, nil // released
	}
	lvl := f.levels[f.index]
	if f.index < len(f.levels)-1 {
		f.index++
	}
	return lvl, nil
}

// SetLevels replaces the script and rewinds.
func (f *FakeInput) SetLevels(levels ...bool) {
	f.mu.Lock()
	f.levels = levels
	f.index = 0
	f.mu.Unlock()
}

// FailWith makes every subsequent Read return err.
func (f *FakeInput) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// FakeOutput records every level written to it.
type FakeOutput struct {
	mu     sync.Mutex
	Writes []bool
}

func (f *FakeOutput) Set(level bool) error {
	f.mu.Lock()
	f.Writes = append(f.Writes, level)
	f.mu.Unlock()
	return nil
}

// Last returns the most recent level, or def if nothing was written.
func (f *FakeOutput) Last(def bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Writes) == 0 {
		return def
	}
	return f.Writes[len(f.Writes)-1]
}

// Count returns the number of writes so far.
func (f *FakeOutput) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

// FakeActuator records every commanded position.
type FakeActuator struct {
	mu    sync.Mutex
	Moves []types.Position
	Err   error
}

func (f *FakeActuator) SetPosition(pos types.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Moves = append(f.Moves, pos)
	return nil
}

// Last returns the most recent position, or def if the actuator never moved.
func (f *FakeActuator) Last(def types.Position) types.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Moves) == 0 {
		return def
	}
	return f.Moves[len(f.Moves)-1]
}

// Count returns the number of moves so far.
func (f *FakeActuator) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Moves)
}
