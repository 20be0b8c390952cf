package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"vela/internal/session"
)

// Config is a decoded vela.toml. Paths in it are relative to Root.
type Config struct {
	Root      string
	Project   ProjectSection
	Analysis  AnalysisSection
	Features  map[string]bool
	Libraries LibrariesSection
}

// ProjectSection is [project].
type ProjectSection struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
}

// AnalysisSection is [analysis].
type AnalysisSection struct {
	ES6Mode        bool `toml:"es6_mode"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Jobs           int  `toml:"jobs"`
}

// LibrariesSection is [libraries].
type LibrariesSection struct {
	Paths []string `toml:"paths"`
}

// DefaultMaxDiagnostics applies when [analysis].max_diagnostics is unset.
const DefaultMaxDiagnostics = 200

var (
	// ErrProjectSectionMissing indicates that [project] is missing in vela.toml.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrProjectNameMissing indicates that [project].name is missing in vela.toml.
	ErrProjectNameMissing = errors.New("missing [project].name")
	// ErrNoSources indicates that [project].sources matched no file.
	ErrNoSources = errors.New("no source files")
)

type configFile struct {
	Project   ProjectSection   `toml:"project"`
	Analysis  AnalysisSection  `toml:"analysis"`
	Features  map[string]bool  `toml:"features"`
	Libraries LibrariesSection `toml:"libraries"`
}

// Load parses the vela.toml at path.
func Load(path string) (*Config, error) {
	var cfg configFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	name := strings.TrimSpace(cfg.Project.Name)
	if !meta.IsDefined("project", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectNameMissing)
	}
	if !meta.IsDefined("analysis", "max_diagnostics") {
		cfg.Analysis.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if cfg.Analysis.MaxDiagnostics < 0 || cfg.Analysis.Jobs < 0 {
		return nil, fmt.Errorf("%s: [analysis] values must not be negative", path)
	}
	if len(cfg.Project.Sources) == 0 {
		cfg.Project.Sources = []string{"*.yaml"}
	}
	out := &Config{
		Root:      filepath.Dir(path),
		Project:   ProjectSection{Name: name, Sources: cfg.Project.Sources},
		Analysis:  cfg.Analysis,
		Features:  cfg.Features,
		Libraries: cfg.Libraries,
	}
	if _, err := out.FeatureSet(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// FeatureSet returns the language features named in [features]. Features
// that are not mentioned keep their defaults.
func (c *Config) FeatureSet() (session.FeatureSet, error) {
	names := make([]string, 0, len(c.Features))
	for name := range c.Features {
		names = append(names, name)
	}
	slices.Sort(names)
	fs := session.NewFeatureSet()
	for _, name := range names {
		f, err := session.ParseFeature(name)
		if err != nil {
			return session.FeatureSet{}, fmt.Errorf("[features]: %w", err)
		}
		fs = fs.With(f, c.Features[name])
	}
	return fs, nil
}

// SourceFiles expands [project].sources into sorted, absolute paths.
func (c *Config) SourceFiles() ([]string, error) {
	var out []string
	for _, pattern := range c.Project.Sources {
		matches, err := filepath.Glob(c.resolve(pattern))
		if err != nil {
			return nil, fmt.Errorf("[project].sources %q: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("project %s: %w", c.Project.Name, ErrNoSources)
	}
	return out, nil
}

// LibraryPaths returns [libraries].paths resolved against Root.
func (c *Config) LibraryPaths() []string {
	out := make([]string, 0, len(c.Libraries.Paths))
	for _, p := range c.Libraries.Paths {
		out = append(out, c.resolve(p))
	}
	return out
}

func (c *Config) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}
