package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ayusman/tadasana/internal/app"
	"github.com/ayusman/tadasana/internal/config"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/posture"
	"github.com/ayusman/tadasana/internal/server"
	"github.com/ayusman/tadasana/internal/store"
	"github.com/ayusman/tadasana/internal/tray"
)

func main() {
	fmt.Println("Tadasana - Sitting Posture Monitor")

	dir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to prepare data directory: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, "config.json"))
	if err != nil {
		log.Printf("Failed to load config (%v), using defaults", err)
	}

	st, err := store.New(filepath.Join(dir, "tadasana.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	pluginDir := cfg.PluginDir
	if pluginDir == "" {
		pluginDir = filepath.Join(dir, "plugins")
	}
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		log.Fatalf("Failed to create plugin directory: %v", err)
	}

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	application := app.New(app.Config{
		Store:          st,
		PluginDir:      pluginDir,
		CameraID:       cfg.CameraIndex,
		IdleFPS:        cfg.IdleFPS,
		ActiveFPS:      cfg.ActiveFPS,
		ActivityThresh: cfg.ActivityThreshold,
		QuietAfter:     cfg.QuietAfter(),
		Detector:       cfg.Detector(),
	})

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Failed to discover plugins: %v", err)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		App:       application,
	})

	// The tray owns the main thread, so the server gets a goroutine.
	addr := cfg.ListenAddr
	fmt.Printf("Starting server on %s\n", addr)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	tr := tray.New()
	tr.OnToggle(application.SetEnabled)
	tr.OnCalibrate(func() {
		offset, err := application.Calibrate()
		if err != nil {
			log.Printf("Calibration failed: %v", err)
			return
		}
		log.Printf("Calibration captured (offset %.1f)", offset)
	})
	tr.OnDashboard(func() {
		if err := openBrowser(dashboardURL(addr)); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	tr.OnQuit(func() {
		log.Println("Shutting down")
	})

	application.OnFrame(func(_ *detector.PoseLandmarks, snapshot posture.Snapshot) {
		if status, ok := snapshot.Worst(); ok {
			tr.SetStatus(string(status))
		} else {
			tr.SetStatus("")
		}
	})

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start monitoring: %v", err)
	}
	application.SetEnabled(true)

	// Blocks until the user quits from the tray menu.
	tr.Run()

	application.Stop()
}

// dataDir ensures ~/.tadasana exists and returns its path.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".tadasana")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// dashboardURL turns a listen address into a URL a browser can open.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// findWebDir looks for the dashboard assets relative to the working
// directory, then under ~/.tadasana/web.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tadasana", "web"))
	}

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	return ""
}
