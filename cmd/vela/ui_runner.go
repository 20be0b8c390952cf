package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"vela/internal/driver"
	"vela/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// useProgressUI resolves --ui. auto shows the progress view on a terminal
// for multi-unit pretty runs.
func useProgressUI(cmd *cobra.Command, out outputOptions, units int) (bool, error) {
	mode, err := cmd.Flags().GetString("ui")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(mode) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return units > 1 && out.format == "pretty" && !out.quiet && isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --ui %q (expected auto|on|off)", mode)
}

// runWithUI drives the units while a Bubble Tea program renders their
// progress on stdout.
func runWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, paths, opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, paths, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the view may quit before the run ends
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
