// Package systemclock provides the wall clock.
package systemclock

import (
	"time"

	"github.com/user/blocksched/pkg/ports"
)

// Clock implements ports.Clock with time.Now.
type Clock struct {
	loc *time.Location
}

// New returns a clock reporting instants in loc, or the local zone when loc is nil.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

var _ ports.Clock = (*Clock)(nil)
