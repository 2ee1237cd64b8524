package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Format.Indent != 2 {
		t.Errorf("Default indent = %d, want 2", cfg.Format.Indent)
	}
	if cfg.Format.HeaderTemplate != "" {
		t.Errorf("Default header template = %q, want empty", cfg.Format.HeaderTemplate)
	}
	if !cfg.Transform.CustomProperties.Preserve {
		t.Error("Default custom properties preserve = false, want true")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Default console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Default file level = %q, want none", cfg.Logging.FileLogger.Level)
	}

	wantBubble := []string{"media", "supports", "layer", "container", "starting-style"}
	if diff := cmp.Diff(wantBubble, cfg.Transform.Nesting.Bubble); diff != "" {
		t.Errorf("Default bubble mismatch (-want +got):\n%s", diff)
	}
	wantUnwrap := []string{"font-face", "keyframes", "document"}
	if diff := cmp.Diff(wantUnwrap, cfg.Transform.Nesting.Unwrap); diff != "" {
		t.Errorf("Default unwrap mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")
	path := writeConfig(t, `version: 1
format:
  indent: 4
  header_template: " {{ .SourceFile }} "
transform:
  nesting:
    bubble: [media]
  custom_properties:
    preserve: false
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+logPath+`
    mode: append
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Format.Indent != 4 {
		t.Errorf("Indent = %d, want 4", cfg.Format.Indent)
	}
	if cfg.Format.HeaderTemplate != " {{ .SourceFile }} " {
		t.Errorf("HeaderTemplate = %q, must be kept unexpanded", cfg.Format.HeaderTemplate)
	}
	if diff := cmp.Diff([]string{"media"}, cfg.Transform.Nesting.Bubble); diff != "" {
		t.Errorf("Bubble mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Transform.Nesting.Unwrap) != 3 {
		t.Errorf("Unwrap = %v, want defaults kept", cfg.Transform.Nesting.Unwrap)
	}
	if cfg.Transform.CustomProperties.Preserve {
		t.Error("Preserve = true, want false")
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
	// sanitizer makes sure log directory exists
	if _, err := os.Stat(filepath.Dir(logPath)); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid yaml",
			content: `version: 1
format:
  indent: 2
  invalid indent
`,
		},
		{
			name: "unknown field",
			content: `version: 1
unknown_field: value
`,
		},
		{
			name:    "wrong version",
			content: "version: 2\n",
		},
		{
			name: "negative indent",
			content: `version: 1
format:
  indent: -1
`,
		},
		{
			name: "bad console level",
			content: `version: 1
logging:
  console:
    level: verbose
`,
		},
		{
			name: "bad file mode",
			content: `version: 1
logging:
  file:
    mode: rotate
`,
		},
		{
			name: "empty at-rule name",
			content: `version: 1
transform:
  nesting:
    unwrap: [font-face, ""]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfiguration() succeeded, want error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	if _, err := LoadConfiguration("", option); err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}
	if cfg.Reporting.Destination == "" {
		t.Error("Prepared config has no report destination")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Format.Indent = 3

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"indent: 3", "header_template:", "preserve: true", "custom_properties:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Dump() output missing %q:\n%s", want, data)
		}
	}

	// dumped configuration must be loadable
	back, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("unmarshalConfig() of dumped data error = %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("Dump() round trip mismatch (-want +got):\n%s", diff)
	}
}
