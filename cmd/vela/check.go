package main

import (
	"github.com/spf13/cobra"

	"vela/internal/driver"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Resolve and check units",
		Long:  `Builds every unit and runs the checkers. Without arguments the sources of the enclosing vela.toml are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runPipeline(cmd, args, driver.StageCheck)
			return err
		},
	}
	addOutputFlags(cmd)
	return cmd
}

// runPipeline drives the units to stage, prints their diagnostics and
// returns an exitError when any unit failed.
func runPipeline(cmd *cobra.Command, args []string, stage driver.Stage) (*driver.Result, error) {
	setup, err := loadRunSetup(cmd, args, stage)
	if err != nil {
		return nil, err
	}
	out, err := readOutputOptions(cmd, setup)
	if err != nil {
		return nil, err
	}
	withUI, err := useProgressUI(cmd, out, len(setup.paths))
	if err != nil {
		return nil, err
	}
	var res *driver.Result
	if withUI {
		res, err = runWithUI(cmd.Context(), cmd.Name(), setup.paths, setup.opts)
	} else {
		res, err = driver.Run(cmd.Context(), setup.paths, setup.opts)
	}
	if err != nil {
		return nil, err
	}
	if err := renderResult(cmd.ErrOrStderr(), res, out); err != nil {
		return nil, err
	}
	if code := res.ExitCode(); code != 0 {
		return res, exitError{code: code}
	}
	return res, nil
}
