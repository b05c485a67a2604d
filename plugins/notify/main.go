// Package main provides a desktop notification plugin.
// It surfaces posture alerts as native notifications and spoken warnings.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request is the alert the executor delivers on stdin.
type Request struct {
	Action     string          `json:"action"`
	Metric     string          `json:"metric"`
	Status     string          `json:"status"`
	Angle      float64         `json:"angle"`
	Confidence float64         `json:"confidence"`
	Config     json.RawMessage `json:"config"`
}

// Response goes back to the executor on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// notifyConfig holds the per-binding settings stored alongside an alert action.
type notifyConfig struct {
	Title string `json:"title"`
}

var actions = map[string]func(req *Request) error{
	"notify": notify,
	"speak":  speak,
}

// metricLabels maps metric identifiers to human-readable names.
var metricLabels = map[string]string{
	"neckFlexion": "Neck flexion",
	"cva":         "Craniovertebral angle",
	"fsa":         "Forward shoulder angle",
}

func main() {
	reply(run())
}

// run decodes the request from stdin and dispatches it.
func run() error {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		return fmt.Errorf("bad request on stdin: %v", err)
	}

	action, ok := actions[req.Action]
	if !ok {
		return fmt.Errorf("unknown action: %s", req.Action)
	}

	if err := action(&req); err != nil {
		return fmt.Errorf("action %s failed: %v", req.Action, err)
	}
	return nil
}

// reply reports the outcome to the executor as a JSON response on stdout.
func reply(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// alertMessage builds the notification body from the request's metric reading.
func alertMessage(req *Request) string {
	label, ok := metricLabels[req.Metric]
	if !ok {
		label = req.Metric
	}
	return fmt.Sprintf("%s at %.1f° (%s)", label, req.Angle, req.Status)
}

// alertTitle returns the configured notification title, falling back to a default.
func alertTitle(req *Request) string {
	title := "Tadasana Posture Alert"
	if len(req.Config) > 0 {
		var cfg notifyConfig
		if err := json.Unmarshal(req.Config, &cfg); err == nil && cfg.Title != "" {
			title = cfg.Title
		}
	}
	return title
}

// notify shows a desktop notification describing the posture alert.
func notify(req *Request) error {
	title := alertTitle(req)
	message := alertMessage(req)

	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		return command("osascript", "-e", script)
	case "linux":
		return command("notify-send", "--urgency=normal", title, message)
	default:
		return fmt.Errorf("desktop notifications not supported on %s", runtime.GOOS)
	}
}

// speak reads the alert aloud using the platform's speech synthesizer.
func speak(req *Request) error {
	message := alertMessage(req)
	// Degree signs read poorly, so strip them for speech output.
	message = strings.ReplaceAll(message, "°", " degrees")

	switch runtime.GOOS {
	case "darwin":
		return command("say", message)
	case "linux":
		return command("spd-say", message)
	default:
		return fmt.Errorf("speech output not supported on %s", runtime.GOOS)
	}
}

// command runs an external tool and folds its output into any error.
func command(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
