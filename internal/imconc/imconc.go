// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package imconc runs the long-lived parts of the agent and stops them
// together.
package imconc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// Routine is anything the agent has to stop on shutdown. A forced stop must
// not wait for in-flight work.
type Routine interface {
	Stop(force bool)
}

// RoutineFunc adapts a function to Routine.
type RoutineFunc func(force bool)

func (f RoutineFunc) Stop(force bool) { f(force) }

type Group struct {
	mu       sync.Mutex
	routines []Routine
	wg       conc.WaitGroup
}

func NewGroup() *Group {
	return &Group{}
}

func (g *Group) Add(routine Routine) *Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routines = append(g.routines, routine)
	return g
}

func (g *Group) Go(fn func()) {
	g.wg.Go(fn)
}

// Stop stops the routines in the reverse order they were added.
func (g *Group) Stop(force bool) {
	g.mu.Lock()
	routines := make([]Routine, len(g.routines))
	copy(routines, g.routines)
	g.mu.Unlock()

	for i := len(routines) - 1; i >= 0; i-- {
		routines[i].Stop(force)
	}
}

// Wait re-panics a panic of any goroutine started with Go.
func (g *Group) Wait() {
	g.wg.Wait()
}

// WaitTimeout reports whether every goroutine returned within timeout. A
// panic is logged instead of propagated.
func (g *Group) WaitTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := g.wg.WaitAndRecover(); r != nil {
			slog.Error("Agent routine panicked", "panic", r.Value, "stack", string(r.Stack))
		}
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
