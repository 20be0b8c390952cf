package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vela/internal/session"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const fullConfig = `
[project]
name = "demo"
sources = ["src/*.yaml", "extra/one.yaml"]

[analysis]
es6_mode = true
max_diagnostics = 50
jobs = 3

[features]
ForbidUsingSupertypesWithInaccessibleContentInTypeArguments = true
AllowEagerSupertypeAccessibilityChecks = false

[libraries]
paths = ["libs/core", "/opt/vela/std.vlib"]
`

func TestLoadFullConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigName)
	writeFile(t, path, fullConfig)
	writeFile(t, filepath.Join(root, "src", "b.yaml"), "")
	writeFile(t, filepath.Join(root, "src", "a.yaml"), "")
	writeFile(t, filepath.Join(root, "extra", "one.yaml"), "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "demo" || !cfg.Analysis.ES6Mode || cfg.Analysis.MaxDiagnostics != 50 || cfg.Analysis.Jobs != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	fs, err := cfg.FeatureSet()
	if err != nil {
		t.Fatalf("FeatureSet: %v", err)
	}
	if !fs.Enabled(session.ForbidUsingSupertypesWithInaccessibleContentInTypeArguments) {
		t.Errorf("forbid feature not enabled")
	}
	if fs.Enabled(session.AllowEagerSupertypeAccessibilityChecks) {
		t.Errorf("eager feature enabled")
	}

	files, err := cfg.SourceFiles()
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "extra", "one.yaml"),
		filepath.Join(root, "src", "a.yaml"),
		filepath.Join(root, "src", "b.yaml"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("SourceFiles = %v, want %v", files, want)
	}

	libs := cfg.LibraryPaths()
	if len(libs) != 2 || libs[0] != filepath.Join(root, "libs", "core") || libs[1] != filepath.FromSlash("/opt/vela/std.vlib") {
		t.Errorf("LibraryPaths = %v", libs)
	}
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigName)
	writeFile(t, path, "[project]\nname = \"demo\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.MaxDiagnostics != DefaultMaxDiagnostics {
		t.Errorf("MaxDiagnostics = %d", cfg.Analysis.MaxDiagnostics)
	}
	if len(cfg.Project.Sources) != 1 || cfg.Project.Sources[0] != "*.yaml" {
		t.Errorf("Sources = %v", cfg.Project.Sources)
	}
	if _, err := cfg.SourceFiles(); !errors.Is(err, ErrNoSources) {
		t.Errorf("SourceFiles err = %v, want ErrNoSources", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
		text    string
	}{
		{name: "no project", content: "[analysis]\njobs = 1\n", want: ErrProjectSectionMissing},
		{name: "no name", content: "[project]\nsources = []\n", want: ErrProjectNameMissing},
		{name: "blank name", content: "[project]\nname = \"  \"\n", want: ErrProjectNameMissing},
		{name: "bad feature", content: "[project]\nname = \"x\"\n[features]\nNoSuchFeature = true\n", text: "NoSuchFeature"},
		{name: "negative jobs", content: "[project]\nname = \"x\"\n[analysis]\njobs = -1\n", text: "negative"},
		{name: "bad toml", content: "[project\n", text: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if tt.text != "" && !strings.Contains(err.Error(), tt.text) {
				t.Errorf("err = %v, want it to mention %q", err, tt.text)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigName), "[project]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot = %q, %v, %v", got, ok, err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
}
