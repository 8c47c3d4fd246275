// Package cronticker runs periodic callbacks on a cron schedule.
package cronticker

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/user/blocksched/pkg/ports"
)

// DefaultSpec fires every thirty seconds.
const DefaultSpec = "@every 30s"

// Ticker implements ports.Ticker with robfig/cron.
type Ticker struct {
	spec string

	mu sync.Mutex
	c  *cron.Cron
}

// New creates a ticker for spec, a standard cron expression or descriptor
// such as "@every 30s". An empty spec uses DefaultSpec.
func New(spec string) *Ticker {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Ticker{spec: spec}
}

// Validate reports whether spec parses.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid tick schedule %q: %w", spec, err)
	}
	return nil
}

// Start schedules fn. Starting a running ticker replaces its schedule.
func (t *Ticker) Start(fn func()) error {
	c := cron.New()
	if _, err := c.AddFunc(t.spec, fn); err != nil {
		return fmt.Errorf("invalid tick schedule %q: %w", t.spec, err)
	}

	t.mu.Lock()
	old := t.c
	t.c = c
	t.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.Start()
	return nil
}

// Stop halts the schedule without waiting for a running callback, which may
// hold the lock of the caller.
func (t *Ticker) Stop() {
	t.mu.Lock()
	c := t.c
	t.c = nil
	t.mu.Unlock()

	if c != nil {
		c.Stop()
	}
}

var _ ports.Ticker = (*Ticker)(nil)
