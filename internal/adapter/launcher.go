package adapter

import (
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens character images and pages in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	goos    string
	start   func(name string, args ...string) error
	logger  *slog.Logger
}

// NewLauncher creates a launcher for the configured viewer command line.
// The command line is split on whitespace; the URL is appended last.
func NewLauncher(commandLine string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	fields := strings.Fields(commandLine)
	l := &Launcher{
		goos:   runtime.GOOS,
		start:  startCommand,
		logger: logger,
	}
	if len(fields) > 0 {
		l.command = fields[0]
		l.args = fields[1:]
	}
	return l
}

// Open launches url without waiting for the viewer to exit
func (l *Launcher) Open(url string) error {
	name, args := l.commandFor(url)
	l.logger.Info("launching viewer", "command", name, "args", args)
	return l.start(name, args...)
}

// commandFor resolves the configured viewer, falling back to the system
// default handler (open/xdg-open/start)
func (l *Launcher) commandFor(url string) (string, []string) {
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		return l.command, args
	}

	switch l.goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}
