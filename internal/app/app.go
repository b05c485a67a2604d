// Package app provides the main application logic for the Tadasana posture monitoring system.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/plugin"
	"github.com/ayusman/tadasana/internal/posture"
	"github.com/ayusman/tadasana/internal/store"
)

// DefaultQuietAfter is how long the scene must stay still before the
// pipeline drops back to the idle frame rate.
const DefaultQuietAfter = 30 * time.Second

// FrameListener receives the detected pose (nil when nobody is in frame) and
// the posture snapshot computed from it, once per evaluated frame.
type FrameListener func(pose *detector.PoseLandmarks, snapshot posture.Snapshot)

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	PluginDir      string
	CameraID       int
	IdleFPS        int
	ActiveFPS      int
	ActivityThresh float64
	QuietAfter     time.Duration
	Detector       detector.Config
}

// App is the main application that orchestrates posture evaluation and alert execution.
type App struct {
	config     Config
	camera     capture.Camera
	activity   *capture.ActivityDetector
	detector   detector.Detector
	engine     *posture.Engine
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}

	latest    *posture.Snapshot
	latestAt  time.Time
	lastSeen  time.Time
	inputErr  error
	listeners []FrameListener

	// lastStatus tracks the previous status per metric so alert actions
	// fire on transitions only. Touched by the pipeline goroutine only.
	lastStatus map[string]posture.Status
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = capture.DefaultFPS
	}
	if config.ActiveFPS < config.IdleFPS {
		config.ActiveFPS = config.IdleFPS
	}
	if config.ActivityThresh <= 0 {
		config.ActivityThresh = 1.0 // Default threshold: 1% pixel change
	}
	if config.QuietAfter <= 0 {
		config.QuietAfter = DefaultQuietAfter
	}
	if config.Detector == (detector.Config{}) {
		config.Detector = detector.DefaultConfig()
	}

	var calibration posture.CalibrationStore
	if config.Store != nil {
		calibration = config.Store.Calibration()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		activity:   capture.NewActivityDetector(config.ActivityThresh),
		engine:     posture.NewEngine(calibration),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5000), // 5 second timeout for plugin execution
		enabled:    false,
		stopCh:     nil,
		lastStatus: make(map[string]posture.Status),
	}

	// Prefer the real MediaPipe bridge; without it the mock keeps the rest
	// of the system usable.
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables posture monitoring.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether posture monitoring is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera implementation. It must be called before
// Start, which opens the camera.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Calibrate captures the current pose as the upright baseline and returns the
// stored neck flexion offset in degrees.
func (a *App) Calibrate() (float64, error) {
	return a.engine.Calibrate()
}

// Start begins the monitoring pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil // already running
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	// Assume someone is at the desk until detection says otherwise, so the
	// empty-desk pause cannot kick in before the first pose is seen.
	a.lastSeen = time.Now()
	a.lastStatus = make(map[string]posture.Status)

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Monitoring pipeline started")
	return nil
}

// Stop halts the monitoring pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.activity.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Monitoring pipeline stopped")
}

// Latest returns the most recently computed posture snapshot and the time it
// was captured. ok is false until the pipeline has evaluated a frame.
func (a *App) Latest() (snapshot posture.Snapshot, at time.Time, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return posture.Snapshot{}, time.Time{}, false
	}
	return *a.latest, a.latestAt, true
}

// OnFrame registers a callback invoked after every evaluated frame.
// Callbacks run on the pipeline goroutine and must not block.
func (a *App) OnFrame(fn FrameListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// InputError returns the most recent camera or detector failure, or nil when
// frames are flowing normally.
func (a *App) InputError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inputErr
}

func (a *App) setInputError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputErr = err
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// ActivityDetector returns the scene activity detector.
func (a *App) ActivityDetector() *capture.ActivityDetector {
	return a.activity
}

// Engine returns the posture engine.
func (a *App) Engine() *posture.Engine {
	return a.engine
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
