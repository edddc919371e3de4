// Package opener hands result URLs to a browser.
package opener

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/sift/internal/config"
	"github.com/pders01/sift/internal/debuglog"
	"github.com/pders01/sift/internal/validation"
)

type Launcher struct {
	candidates    []string
	defaultOpener string
	registry      *Registry
	validator     *validation.URLValidator

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry(UserRegistryPath())
	if err != nil {
		debuglog.Warnf("opener registry: %v", err)
		if registry == nil {
			registry = &Registry{defs: make(map[string]Definition), goos: runtime.GOOS}
		}
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = cfg.Opener.Darwin
	case "linux":
		candidates = cfg.Opener.Linux
	case "windows":
		candidates = cfg.Opener.Windows
	default:
		candidates = cfg.Opener.Darwin
	}

	defaultOpener := cfg.Opener.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = fallbackOpener(runtime.GOOS)
	}

	return &Launcher{
		candidates:    candidates,
		defaultOpener: defaultOpener,
		registry:      registry,
		validator:     validation.NewResultURLValidator(),
		lookPath:      exec.LookPath,
		start:         startDetached,
	}
}

func fallbackOpener(goos string) string {
	switch goos {
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Program returns the first configured browser present on PATH, or the
// default opener.
func (l *Launcher) Program() string {
	for _, name := range l.candidates {
		if _, err := l.lookPath(l.registry.Executable(name)); err == nil {
			return name
		}
	}
	return l.defaultOpener
}

// Open validates rawURL and starts the browser without waiting for it.
func (l *Launcher) Open(rawURL string) error {
	target, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	program := l.Program()
	if program == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.Command(program, target)
	if err != nil {
		cmd = exec.Command(program, target)
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	debuglog.Debugf("opened %s with %s", target, program)
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
