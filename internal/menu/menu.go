// Package menu holds the interaction state of the navigation menus: the desktop dropdown with its
// hover-intent close delay, and the mobile modal.
package menu

import (
	"sync"
	"time"

	"github.com/puzzo-dev/sitefront/internal/clock"
)

// CloseDelay is how long the dropdown stays open after the cursor leaves it.
const CloseDelay = 1000 * time.Millisecond

// State is a dropdown snapshot. OpenItem is meaningful only when Open is true.
type State struct {
	Open     bool   `json:"open"`
	OpenItem string `json:"openItem,omitempty"`
}

// Dropdown is the desktop dropdown machine: closed or open on one item.
type Dropdown struct {
	clock clock.Clock

	mu      sync.Mutex
	state   State
	pending clock.Timer
	gen     int
}

// NewDropdown returns a closed dropdown. A nil clock uses the real one.
func NewDropdown(clk clock.Clock) *Dropdown {
	if clk == nil {
		clk = clock.Real()
	}
	return &Dropdown{clock: clk}
}

// State returns the current state.
func (d *Dropdown) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OpenItem returns the open item id and whether any item is open.
func (d *Dropdown) OpenItem() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.OpenItem, d.state.Open
}

// ClosePending reports whether a delayed close is scheduled.
func (d *Dropdown) ClosePending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// MouseEnter opens id when it has children. Entering a leaf changes nothing.
func (d *Dropdown) MouseEnter(id string, hasChildren bool) {
	if !hasChildren {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.state = State{Open: true, OpenItem: id}
}

// MouseLeave schedules a close after CloseDelay unless one is already pending.
func (d *Dropdown) MouseLeave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		return
	}
	d.gen++
	gen := d.gen
	d.pending = d.clock.AfterFunc(CloseDelay, func() { d.fire(gen) })
}

// ItemClick closes immediately.
func (d *Dropdown) ItemClick() {
	d.closeNow()
}

// ClickOutside closes immediately.
func (d *Dropdown) ClickOutside() {
	d.closeNow()
}

// Unmount cancels any pending close.
func (d *Dropdown) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Dropdown) closeNow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.state = State{}
}

func (d *Dropdown) cancelLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

func (d *Dropdown) fire(gen int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	d.pending = nil
	d.state = State{}
}

// Mobile is the mobile menu modal.
type Mobile struct {
	mu   sync.Mutex
	open bool
}

// Open shows the modal.
func (m *Mobile) Open() {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
}

// Close hides the modal.
func (m *Mobile) Close() {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
}

// Toggle flips the modal and returns the new state.
func (m *Mobile) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = !m.open
	return m.open
}

// ItemClick closes the modal once a destination is chosen.
func (m *Mobile) ItemClick() { m.Close() }

// IsOpen reports whether the modal is shown.
func (m *Mobile) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
