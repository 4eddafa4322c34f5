// Package theme implements the colour theme state machine. The mode is user-chosen and
// persisted; the actual scheme is derived from it and, in auto mode, from the time of day.
package theme

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/puzzo-dev/sitefront/internal/clock"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

// Mode is the user-selected theme.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
	ModeAuto   Mode = "auto"
)

// Scheme is the colour scheme actually applied.
type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

// AutoInterval is how often auto mode re-evaluates the time of day.
const AutoInterval = 60 * time.Second

const (
	nightStart = 18*60 + 30
	dayStart   = 6*60 + 30
)

// ErrInvalidMode is returned by SetMode for unknown modes.
var ErrInvalidMode = errors.New("theme: invalid mode")

// ParseMode validates raw as a Mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeLight, ModeDark, ModeSystem, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

// IsNight reports whether t falls in the wrapping window [18:30, 06:30).
func IsNight(t time.Time) bool {
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= nightStart || minutes < dayStart
}

// Applier applies a scheme to the rendering surface.
type Applier func(Scheme)

// SystemProbe reports the operating system colour scheme.
type SystemProbe func() Scheme

// ProbeFromHeader reads the Sec-CH-Prefers-Color-Scheme client hint, defaulting to light.
func ProbeFromHeader(h http.Header) SystemProbe {
	return func() Scheme {
		if strings.EqualFold(strings.Trim(h.Get("Sec-CH-Prefers-Color-Scheme"), `" `), "dark") {
			return SchemeDark
		}
		return SchemeLight
	}
}

// Options configures a Machine.
type Options struct {
	Clock clock.Clock
	Store prefs.Storage
	Apply Applier
	Probe SystemProbe
}

// Machine holds the theme mode and its derived scheme.
type Machine struct {
	clock clock.Clock
	store prefs.Storage
	apply Applier
	probe SystemProbe

	mu      sync.Mutex
	mode    Mode
	actual  Scheme
	mounted bool
	timer   clock.Timer
	gen     int
}

// New reads the stored mode once, defaulting to system.
func New(opts Options) *Machine {
	m := &Machine{
		clock: opts.Clock,
		store: opts.Store,
		apply: opts.Apply,
		probe: opts.Probe,
		mode:  ModeSystem,
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.probe == nil {
		m.probe = func() Scheme { return SchemeLight }
	}
	if m.store != nil {
		if raw, ok := m.store.Get(prefs.KeyTheme); ok {
			if mode, err := ParseMode(raw); err == nil {
				m.mode = mode
			}
		}
	}
	m.actual = m.evaluateLocked()
	return m
}

// Mode returns the selected mode.
func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Actual returns the last computed scheme.
func (m *Machine) Actual() Scheme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actual
}

// Mount evaluates and applies the scheme and, in auto mode, starts the re-evaluation timer.
func (m *Machine) Mount() {
	m.mu.Lock()
	m.mounted = true
	scheme := m.transitionLocked()
	m.mu.Unlock()
	m.applyScheme(scheme)
}

// Unmount stops the re-evaluation timer.
func (m *Machine) Unmount() {
	m.mu.Lock()
	m.mounted = false
	m.stopTimerLocked()
	m.mu.Unlock()
}

// SetMode switches the mode, persists it and applies the resulting scheme.
func (m *Machine) SetMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	m.mu.Lock()
	m.mode = mode
	scheme := m.transitionLocked()
	m.mu.Unlock()

	m.applyScheme(scheme)
	if m.store != nil {
		if err := m.store.Set(prefs.KeyTheme, string(mode)); err != nil {
			return fmt.Errorf("theme: persist mode: %w", err)
		}
	}
	return nil
}

// transitionLocked recomputes the scheme and arms or tears down the auto timer.
func (m *Machine) transitionLocked() Scheme {
	m.actual = m.evaluateLocked()
	m.stopTimerLocked()
	if m.mode == ModeAuto && m.mounted {
		m.armLocked()
	}
	return m.actual
}

func (m *Machine) evaluateLocked() Scheme {
	switch m.mode {
	case ModeDark:
		return SchemeDark
	case ModeSystem:
		return m.probe()
	case ModeAuto:
		if IsNight(m.clock.Now()) {
			return SchemeDark
		}
		return SchemeLight
	default:
		return SchemeLight
	}
}

func (m *Machine) armLocked() {
	m.gen++
	gen := m.gen
	m.timer = m.clock.AfterFunc(AutoInterval, func() { m.tick(gen) })
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Machine) tick(gen int) {
	m.mu.Lock()
	if gen != m.gen || m.mode != ModeAuto || !m.mounted {
		m.mu.Unlock()
		return
	}
	m.actual = m.evaluateLocked()
	scheme := m.actual
	m.armLocked()
	m.mu.Unlock()
	m.applyScheme(scheme)
}

func (m *Machine) applyScheme(s Scheme) {
	if m.apply != nil {
		m.apply(s)
	}
}
