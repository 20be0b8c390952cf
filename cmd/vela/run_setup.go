package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vela/internal/driver"
	"vela/internal/project"
	"vela/internal/session"
)

var errNoInputs = errors.New("no input files and no vela.toml found")

// runSetup is what a command needs to drive the pipeline.
type runSetup struct {
	paths   []string
	opts    driver.Options
	config  *project.Config
	baseDir string
}

// loadRunSetup merges vela.toml, when one is found above the working
// directory, with the command line. Explicit flags win over the file and
// positional arguments replace [project].sources.
func loadRunSetup(cmd *cobra.Command, args []string, stage driver.Stage) (*runSetup, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	setup := &runSetup{baseDir: cwd, opts: driver.Options{Stage: stage, MaxDiagnostics: project.DefaultMaxDiagnostics}}

	cfgPath, found, err := project.FindVelaToml(cwd)
	if err != nil {
		return nil, err
	}
	if found {
		cfg, err := project.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		features, err := cfg.FeatureSet()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfgPath, err)
		}
		setup.config = cfg
		setup.baseDir = cfg.Root
		setup.opts.Features = features
		setup.opts.ES6Mode = cfg.Analysis.ES6Mode
		setup.opts.MaxDiagnostics = cfg.Analysis.MaxDiagnostics
		setup.opts.Jobs = cfg.Analysis.Jobs
		setup.opts.Libraries = cfg.LibraryPaths()
	}

	switch {
	case len(args) > 0:
		setup.paths = args
	case setup.config != nil:
		if setup.paths, err = setup.config.SourceFiles(); err != nil {
			return nil, err
		}
	default:
		return nil, errNoInputs
	}

	if err := applyFlags(cmd, setup); err != nil {
		return nil, err
	}
	return setup, nil
}

func applyFlags(cmd *cobra.Command, setup *runSetup) error {
	flags := cmd.Flags()
	if flags.Changed("max-diagnostics") {
		n, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return err
		}
		setup.opts.MaxDiagnostics = n
	}
	if flags.Changed("jobs") {
		n, err := flags.GetInt("jobs")
		if err != nil {
			return err
		}
		setup.opts.Jobs = n
	}
	if flags.Changed("es6") {
		on, err := flags.GetBool("es6")
		if err != nil {
			return err
		}
		setup.opts.ES6Mode = on
	}
	if flags.Changed("features") {
		specs, err := flags.GetStringSlice("features")
		if err != nil {
			return err
		}
		if setup.opts.Features, err = parseFeatures(setup.opts.Features, specs); err != nil {
			return err
		}
	}
	libs, err := flags.GetStringSlice("lib")
	if err != nil {
		return err
	}
	setup.opts.Libraries = append(setup.opts.Libraries, libs...)
	if setup.opts.EnableTimings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	return nil
}

// parseFeatures applies name or name=bool specs on top of base.
func parseFeatures(base session.FeatureSet, specs []string) (session.FeatureSet, error) {
	fs := base.Clone()
	for _, spec := range specs {
		name, value, hasValue := strings.Cut(spec, "=")
		on := true
		if hasValue {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return session.FeatureSet{}, fmt.Errorf("--features %s: %w", spec, err)
			}
			on = v
		}
		f, err := session.ParseFeature(strings.TrimSpace(name))
		if err != nil {
			return session.FeatureSet{}, fmt.Errorf("--features: %w", err)
		}
		fs = fs.With(f, on)
	}
	return fs, nil
}

// useColor resolves --color against the terminal state of stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		return !color.NoColor && isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color %q (expected auto|on|off)", mode)
}
