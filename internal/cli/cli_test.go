package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg,png,dot", []string{"svg", "png", "dot"}},
		{" svg , json ", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"svg", "png", "dot", "json"}); err != nil {
		t.Errorf("all known formats rejected: %v", err)
	}
	if err := validateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		format string
		multi  bool
		want   string
	}{
		{"default from input", "net/topo.json", "", "svg", false, "net/topo.svg"},
		{"explicit single output", "topo.json", "out.svg", "svg", false, "out.svg"},
		{"multi uses output as base", "topo.json", "out", "png", true, "out.png"},
		{"multi default base", "topo.json", "", "dot", true, "topo.dot"},
		{"json gets layout suffix", "topo.json", "", "json", true, "topo.layout.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactPath(tt.input, tt.output, tt.format, tt.multi); got != tt.want {
				t.Errorf("artifactPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateKeyFor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"topo.json", "topo"},
		{"/data/networks/backbone.json", "backbone"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := stateKeyFor(tt.input); got != tt.want {
			t.Errorf("stateKeyFor(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("explicit.svg", "topo.json", ".layout.json"); got != "explicit.svg" {
		t.Errorf("explicit output ignored: %q", got)
	}
	if got := outputPath("", "net/topo.json", ".layout.json"); got != "net/topo.layout.json" {
		t.Errorf("derived output = %q", got)
	}
}

func TestStateDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-state", "bgpmap") {
		t.Errorf("stateDir = %q", dir)
	}
}

func TestStateDirDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir: %v", err)
	}
	if dir != filepath.Join(home, ".local", "state", "bgpmap") {
		t.Errorf("stateDir = %q", dir)
	}
}
