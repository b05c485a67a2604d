// Package plugin provides discovery and execution of external alert
// plugins for the Tadasana posture monitoring system.
package plugin

import "encoding/json"

// Manifest is the plugin.json file each plugin ships: identity, the
// executable to run, and the actions it offers.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is what a plugin reads from stdin: the action to perform, the
// posture metric that tripped it, and the stored binding config.
type Request struct {
	Action     string          `json:"action"`
	Metric     string          `json:"metric"`
	Status     string          `json:"status"`
	Angle      float64         `json:"angle"`
	Confidence float64         `json:"confidence"`
	Config     json.RawMessage `json:"config"`
}

// Response is what a plugin writes to stdout when it finishes.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin: its manifest plus where it lives on disk.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
