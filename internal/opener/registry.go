package opener

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// Definition describes how to launch one browser or desktop handler.
type Definition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable; the entry name is used otherwise.
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type file struct {
	Openers map[string]Definition `toml:"openers"`
}

// Registry maps opener names to launch definitions.
type Registry struct {
	defs map[string]Definition
	goos string
}

// UserRegistryPath is the override file merged over the built-in definitions.
func UserRegistryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sift", "openers.toml")
}

// NewRegistry parses the embedded definitions and merges each readable
// override file in order. Unreadable or missing overrides are skipped; a
// malformed one is an error.
func NewRegistry(overrides ...string) (*Registry, error) {
	var builtin file
	if err := toml.Unmarshal(openersTOML, &builtin); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}

	r := &Registry{defs: builtin.Openers, goos: runtime.GOOS}
	if r.defs == nil {
		r.defs = make(map[string]Definition)
	}

	for _, path := range overrides {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var user file
		if err := toml.Unmarshal(data, &user); err != nil {
			return r, fmt.Errorf("parsing %s: %w", path, err)
		}
		for name, def := range user.Openers {
			r.defs[name] = def
		}
	}

	return r, nil
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Command builds the invocation of name for url. Names without a
// definition are run as `name url`.
func (r *Registry) Command(name, url string) (*exec.Cmd, error) {
	def, ok := r.defs[name]
	if !ok {
		return exec.Command(name, url), nil
	}

	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", name, r.goos)
	}

	program := name
	if def.Command != "" {
		program = def.Command
	}

	args := append(slices.Clone(r.args(def)), url)
	return exec.Command(program, args...), nil
}

func (r *Registry) args(def Definition) []string {
	switch r.goos {
	case "darwin":
		if len(def.ArgsDarwin) > 0 {
			return def.ArgsDarwin
		}
	case "linux":
		if len(def.ArgsLinux) > 0 {
			return def.ArgsLinux
		}
	case "windows":
		if len(def.ArgsWindows) > 0 {
			return def.ArgsWindows
		}
	}
	return def.Args
}

// Executable is the program that has to be on PATH for name to work.
func (r *Registry) Executable(name string) string {
	if def, ok := r.defs[name]; ok && def.Command != "" {
		return def.Command
	}
	return name
}
