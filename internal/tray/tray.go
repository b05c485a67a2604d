// Package tray provides the system tray interface for the Tadasana posture
// monitoring system.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu. Callbacks registered through the On*
// methods run on the menu's click goroutine, outside the tray lock.
type Tray struct {
	mu          sync.RWMutex
	enabled     bool
	onToggle    func(enabled bool)
	onCalibrate func()
	onDashboard func()
	onQuit      func()

	statusItem *systray.MenuItem
	toggleItem *systray.MenuItem
}

// New creates a Tray that starts in the enabled (monitoring) state.
func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle registers the callback for the monitoring toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnCalibrate registers the callback for the calibrate item.
func (t *Tray) OnCalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalibrate = fn
}

// OnDashboard registers the callback for the dashboard item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit registers the callback that runs before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run hands the main thread to systray and blocks until quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Tadasana")
	systray.SetTooltip("Tadasana Posture Monitor")

	t.statusItem = systray.AddMenuItem("Posture: --", "Current posture status")
	t.statusItem.Disable()
	systray.AddSeparator()

	t.toggleItem = systray.AddMenuItem("● Monitoring", "Toggle posture monitoring")
	calibrateItem := systray.AddMenuItem("Calibrate Upright Pose", "Record the current pose as your upright baseline")
	systray.AddSeparator()

	dashboardItem := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Tadasana")

	go func() {
		for {
			select {
			case <-t.toggleItem.ClickedCh:
				t.toggle()
			case <-calibrateItem.ClickedCh:
				calibrate, _, _ := t.callbacks()
				call(calibrate)
			case <-dashboardItem.ClickedCh:
				_, dashboard, _ := t.callbacks()
				call(dashboard)
			case <-quitItem.ClickedCh:
				_, _, quit := t.callbacks()
				call(quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// callbacks reads the registered click callbacks. Clicks re-read them each
// time, so late registration still takes effect.
func (t *Tray) callbacks() (calibrate, dashboard, quit func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onCalibrate, t.onDashboard, t.onQuit
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// toggle flips the monitoring state, relabels the menu item, and notifies
// the listener with the new state.
func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	label := "○ Paused"
	if enabled {
		label = "● Monitoring"
	}
	t.toggleItem.SetTitle(label)

	fn := t.onToggle
	t.mu.Unlock()

	if fn != nil {
		fn(enabled)
	}
}

// SetStatus updates the posture line in the menu. An empty status shows the
// no-data placeholder.
func (t *Tray) SetStatus(status string) {
	label := "Posture: --"
	if status != "" {
		label = "Posture: " + status
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle(label)
	}
}

// IsEnabled reports whether monitoring is toggled on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
