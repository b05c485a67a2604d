package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/tadasana/internal/plugin"
	"github.com/ayusman/tadasana/internal/posture"
)

// runPipeline is the main monitoring loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on scene
// activity.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS)
// 2. On scene activity, switch to active mode (ActiveFPS)
// 3. Run pose detection and feed the result through the posture engine
// 4. Publish the snapshot to listeners and fire alert actions on transitions
// 5. After QuietAfter with no activity, switch back to idle mode
// 6. Once the scene has been both quiet and empty for QuietAfter, pause
//    detection until activity resumes
//
// A still subject is the normal case for seated posture, so idle mode only
// lowers the evaluation rate; evaluation keeps running as long as someone
// was recently in frame.
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(a.config.IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if monitoring is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				a.setInputError(err)
				continue
			}

			// Step 1: Scene activity detection
			active, _ := a.activity.Detect(frame)

			if active {
				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(a.config.ActiveFPS)
					frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && a.activity.Quiet(a.config.QuietAfter) {
				activeMode = false
				a.camera.SetFPS(a.config.IdleFPS)
				frameInterval = time.Second / time.Duration(a.config.IdleFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to idle mode")
			}

			// Step 2: Skip the pose round-trip when nobody is at the desk
			if !activeMode && a.deskEmpty() {
				frame.Close()
				continue
			}

			// Step 3: Pose detection and posture evaluation
			a.processFrame(frame)
			frame.Close()
		}
	}
}

// deskEmpty reports whether the scene has been quiet and free of any detected
// person long enough that pose detection can pause.
func (a *App) deskEmpty() bool {
	if !a.activity.Quiet(a.config.QuietAfter) {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.lastSeen.IsZero() && time.Since(a.lastSeen) > a.config.QuietAfter
}

// processFrame runs pose detection on a single frame, feeds the result
// through the posture engine, publishes the snapshot to listeners, and fires
// alert actions for metrics that just crossed into Alert.
func (a *App) processFrame(frame *gocv.Mat) {
	det := a.Detector()
	if det == nil {
		return
	}

	pose, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting pose: %v", err)
		a.setInputError(err)
		return
	}

	snapshot := a.engine.Evaluate(pose)

	a.mu.Lock()
	a.inputErr = nil
	a.latest = &snapshot
	a.latestAt = time.Now()
	if pose != nil {
		a.lastSeen = time.Now()
	}
	listeners := append([]FrameListener(nil), a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(pose, snapshot)
	}

	a.checkAlerts(snapshot)
}

// checkAlerts fires the bound alert action for any metric whose status just
// crossed into Alert. A metric that disappears and later comes back in Alert
// counts as a fresh transition.
func (a *App) checkAlerts(snapshot posture.Snapshot) {
	for _, name := range posture.MetricNames() {
		metric := snapshot.Metric(name)
		if metric == nil {
			delete(a.lastStatus, name)
			continue
		}

		prev, known := a.lastStatus[name]
		a.lastStatus[name] = metric.Status

		if metric.Status != posture.StatusAlert {
			continue
		}
		if known && prev == posture.StatusAlert {
			continue
		}

		a.executeAction(name, metric)
	}
}

// executeAction looks up the alert action bound to a metric and runs it
// through the plugin executor. Execution happens on its own goroutine so a
// slow plugin cannot stall the pipeline.
func (a *App) executeAction(metric string, m *posture.Metric) {
	if a.config.Store == nil {
		return
	}

	action, err := a.config.Store.AlertActions().GetByMetric(metric)
	if err != nil {
		log.Printf("Failed to load alert action for %s: %v", metric, err)
		return
	}
	if action == nil || !action.Enabled {
		return
	}

	p, err := a.pluginMgr.Get(action.PluginName)
	if err != nil {
		log.Printf("Plugin %q not found for %s alert: %v", action.PluginName, metric, err)
		return
	}

	req := &plugin.Request{
		Action:     action.ActionName,
		Metric:     metric,
		Status:     string(m.Status),
		Angle:      m.Angle,
		Confidence: m.Confidence,
		Config:     action.Config,
	}

	log.Printf("Alert action triggered for %s: %s/%s", metric, action.PluginName, action.ActionName)

	go func() {
		resp, err := a.pluginExec.Execute(p, req)
		if err != nil {
			log.Printf("Alert action %s/%s failed: %v", action.PluginName, action.ActionName, err)
			return
		}
		if !resp.Success {
			log.Printf("Alert action %s/%s reported error: %s", action.PluginName, action.ActionName, resp.Error)
		}
	}()
}
