package opener

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistry_Builtin(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	for _, name := range []string{"firefox", "chromium", "xdg-open", "open", "start"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("expected built-in definition for %s", name)
		}
	}
}

func TestNewRegistry_UserOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "openers.toml")
	content := `
[openers.firefox]
description = "Firefox, private"
platforms = ["linux"]
args = ["--private-window"]

[openers.qutebrowser]
platforms = ["linux"]
args = ["--target", "tab"]
`
	if err := os.WriteFile(override, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(filepath.Join(dir, "missing.toml"), override)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	def, ok := r.Lookup("firefox")
	if !ok || def.Description != "Firefox, private" {
		t.Errorf("firefox should be overridden, got %+v", def)
	}
	if _, ok := r.Lookup("qutebrowser"); !ok {
		t.Error("user-defined opener should be added")
	}
	if _, ok := r.Lookup("chromium"); !ok {
		t.Error("built-in definitions should survive a partial override")
	}
}

func TestNewRegistry_MalformedOverride(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "openers.toml")
	if err := os.WriteFile(bad, []byte("[openers.firefox\nargs = "), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegistry(bad)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if r == nil {
		t.Fatal("built-in registry should still be returned")
	}
}

func TestRegistry_Command(t *testing.T) {
	r := &Registry{
		defs: map[string]Definition{
			"firefox": {
				Platforms: []string{"darwin", "linux"},
				Args:      []string{"--new-tab"},
				ArgsLinux: []string{"--new-window"},
			},
			"start": {
				Platforms:   []string{"windows"},
				Command:     "cmd",
				ArgsWindows: []string{"/c", "start", ""},
			},
		},
	}

	tests := []struct {
		name     string
		goos     string
		opener   string
		wantErr  bool
		wantArgs []string
	}{
		{
			name:     "platform specific args",
			goos:     "linux",
			opener:   "firefox",
			wantArgs: []string{"firefox", "--new-window", "https://x"},
		},
		{
			name:     "generic args fallback",
			goos:     "darwin",
			opener:   "firefox",
			wantArgs: []string{"firefox", "--new-tab", "https://x"},
		},
		{
			name:    "unsupported platform",
			goos:    "windows",
			opener:  "firefox",
			wantErr: true,
		},
		{
			name:     "command override",
			goos:     "windows",
			opener:   "start",
			wantArgs: []string{"cmd", "/c", "start", "", "https://x"},
		},
		{
			name:     "undefined opener",
			goos:     "linux",
			opener:   "lynx",
			wantArgs: []string{"lynx", "https://x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.goos = tt.goos
			cmd, err := r.Command(tt.opener, "https://x")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("args = %q, want %q", cmd.Args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, cmd.Args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestRegistry_CommandDoesNotAliasArgs(t *testing.T) {
	r := &Registry{
		goos: "linux",
		defs: map[string]Definition{
			"firefox": {Platforms: []string{"linux"}, Args: make([]string, 1, 4)},
		},
	}
	r.defs["firefox"].Args[0] = "--new-tab"

	first, _ := r.Command("firefox", "https://a")
	second, _ := r.Command("firefox", "https://b")

	if first.Args[2] != "https://a" || second.Args[2] != "https://b" {
		t.Errorf("commands share argument storage: %q / %q", first.Args, second.Args)
	}
}

func TestRegistry_Executable(t *testing.T) {
	r := &Registry{defs: map[string]Definition{"start": {Command: "cmd"}}}

	if got := r.Executable("start"); got != "cmd" {
		t.Errorf("Executable(start) = %s, want cmd", got)
	}
	if got := r.Executable("firefox"); got != "firefox" {
		t.Errorf("Executable(firefox) = %s, want firefox", got)
	}
}
