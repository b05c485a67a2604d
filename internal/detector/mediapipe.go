package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python process may sit unused before it is
// stopped. It restarts transparently on the next Detect call.
const idleShutdown = 30 * time.Second

// MediaPipeDetector runs pose estimation in a Python MediaPipe subprocess.
// Frames go to the process as length-prefixed JPEG blobs on stdin; results
// come back as one JSON object per line on stdout. The process starts lazily
// on the first Detect and shuts down after sitting idle.
type MediaPipeDetector struct {
	config Config

	mu        sync.Mutex
	proc      *exec.Cmd
	frames    io.WriteCloser
	results   *bufio.Reader
	running   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a pose detector backed by the Python service.
// It fails when the service script cannot be located; the process itself is
// not started until the first frame arrives.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	if poseScriptPath() == "" {
		return nil, fmt.Errorf("pose_service.py not found")
	}
	return &MediaPipeDetector{config: config}, nil
}

// Detect sends one frame to the pose service and returns the landmarks it
// reports. A frame with nobody in it returns (nil, nil).
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (*PoseLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureRunning(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := d.writeFrame(buf.GetBytes()); err != nil {
		return nil, err
	}

	line, err := d.results.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Pose *jsonPose `json:"pose"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	d.resetIdleTimer()

	if response.Pose == nil {
		return nil, nil
	}
	return response.Pose.toPoseLandmarks(), nil
}

// Close stops the Python process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// writeFrame sends one JPEG blob prefixed with its length as a 4-byte
// big-endian integer. Callers hold d.mu.
func (d *MediaPipeDetector) writeFrame(data []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := d.frames.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := d.frames.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

func (d *MediaPipeDetector) ensureRunning() error {
	if d.running {
		return nil
	}

	script := poseScriptPath()
	if script == "" {
		return fmt.Errorf("pose_service.py not found")
	}

	python := venvPython()
	if python == "" {
		python = "python3"
	}

	proc := exec.Command(python, script,
		fmt.Sprintf("--min-detection-confidence=%g", d.config.MinDetectionConf),
		fmt.Sprintf("--min-tracking-confidence=%g", d.config.MinTrackingConf),
		fmt.Sprintf("--model-complexity=%d", d.config.ModelComplexity),
	)
	proc.Stderr = os.Stderr

	frames, err := proc.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	results, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	if err := proc.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.proc = proc
	d.frames = frames
	d.results = bufio.NewReader(results)
	d.running = true

	return nil
}

// shutdown closes the frame pipe and reaps the process. Callers hold d.mu.
func (d *MediaPipeDetector) shutdown() error {
	if !d.running {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.frames != nil {
		d.frames.Close()
	}

	err := d.proc.Wait()
	d.proc = nil
	d.frames = nil
	d.results = nil
	d.running = false

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// poseScriptPath locates the MediaPipe service script, checking next to the
// working directory, next to the executable, and under ~/.tadasana.
func poseScriptPath() string {
	return firstExisting(searchPaths("scripts/pose_service.py"))
}

// venvPython locates a virtualenv Python interpreter the same way. Empty
// means fall back to the system python3.
func venvPython() string {
	return firstExisting(append(
		searchPaths("venv/bin/python"),
		"../../venv/bin/python",
	))
}

// searchPaths builds the candidate locations for a file shipped alongside
// the application: relative to the working dir, relative to the binary, and
// in the user data dir.
func searchPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel)}

	if execPath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(execPath), rel))
	}

	paths = append(paths, filepath.Join(os.Getenv("HOME"), ".tadasana", rel))
	return paths
}

// firstExisting returns the first path that exists, made absolute when
// possible, or empty when none do.
func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// jsonPose mirrors the wire format of the Python service. Landmarks the
// model could not place come through as null entries.
type jsonPose struct {
	Points []*jsonLandmark `json:"points"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

func (p jsonPose) toPoseLandmarks() *PoseLandmarks {
	lm := &PoseLandmarks{}

	for i := 0; i < NumLandmarks && i < len(p.Points); i++ {
		if p.Points[i] == nil {
			continue
		}
		lm.Points[i] = &Landmark{
			X:          p.Points[i].X,
			Y:          p.Points[i].Y,
			Z:          p.Points[i].Z,
			Visibility: p.Points[i].Visibility,
		}
	}

	return lm
}
