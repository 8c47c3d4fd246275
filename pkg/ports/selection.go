package ports

import "time"

// KeyValueStore persists small string values across sessions.
// Values are advisory: callers must validate what they read.
type KeyValueStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool)

	// Set stores value under key.
	Set(key, value string) error
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// Ticker runs a function periodically until stopped.
type Ticker interface {
	// Start begins invoking fn on the ticker's schedule.
	Start(fn func()) error

	// Stop halts the schedule. Stop is safe to call more than once.
	Stop()
}

// Viewport is the horizontally scrollable area hosting the surface.
type Viewport interface {
	// ScrollTo moves the left edge to offset pixels.
	ScrollTo(offset float64)

	// CenterOn scrolls so that pixel x is in the middle of the visible area.
	CenterOn(x float64)

	// Offset returns the current scroll offset in pixels.
	Offset() float64
}

// StyleProvider supplies ambient styling read from the host.
type StyleProvider interface {
	// BlockRadius returns the corner radius for event blocks, if the host defines one.
	BlockRadius() (float64, bool)
}
