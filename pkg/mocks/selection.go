package mocks

import (
	"errors"
	"sync"
	"time"

	"github.com/user/blocksched/pkg/ports"
)

// KeyValueStore is a mock implementation of ports.KeyValueStore backed by a map.
type KeyValueStore struct {
	mu     sync.Mutex
	Values map[string]string

	// SetErr, when set, is returned by every Set call.
	SetErr error

	SetCalls int
}

// NewKeyValueStore creates a store seeded with values.
func NewKeyValueStore(values map[string]string) *KeyValueStore {
	if values == nil {
		values = make(map[string]string)
	}
	return &KeyValueStore{Values: values}
}

func (m *KeyValueStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Values[key]
	return v, ok
}

func (m *KeyValueStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = value
	return nil
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// ErrStoreUnavailable is a convenience error for failing stores.
var ErrStoreUnavailable = errors.New("store unavailable")

// Clock is a settable mock implementation of ports.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock fixed at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (m *Clock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Clock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d.
func (m *Clock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

var _ ports.Clock = (*Clock)(nil)

// Ticker is a mock implementation of ports.Ticker fired by hand.
type Ticker struct {
	fn      func()
	Started bool
	Stopped bool
}

func (m *Ticker) Start(fn func()) error {
	m.fn = fn
	m.Started = true
	return nil
}

func (m *Ticker) Stop() {
	m.Stopped = true
	m.fn = nil
}

// Fire runs the registered function once, if the ticker is running.
func (m *Ticker) Fire() {
	if m.fn != nil {
		m.fn()
	}
}

var _ ports.Ticker = (*Ticker)(nil)

// Viewport is a mock implementation of ports.Viewport.
type Viewport struct {
	offset float64

	ScrollToCalls []float64
	CenterOnCalls []float64
}

func (m *Viewport) ScrollTo(offset float64) {
	m.offset = offset
	m.ScrollToCalls = append(m.ScrollToCalls, offset)
}

func (m *Viewport) CenterOn(x float64) {
	m.CenterOnCalls = append(m.CenterOnCalls, x)
}

func (m *Viewport) Offset() float64 {
	return m.offset
}

var _ ports.Viewport = (*Viewport)(nil)

// StyleProvider is a mock implementation of ports.StyleProvider.
type StyleProvider struct {
	Radius float64
	OK     bool
}

func (m *StyleProvider) BlockRadius() (float64, bool) {
	return m.Radius, m.OK
}

var _ ports.StyleProvider = (*StyleProvider)(nil)
