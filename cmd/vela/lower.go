package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vela/internal/driver"
	"vela/internal/ir"
)

func newLowerCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "lower [files...]",
		Short: "Check units and lower secondary constructors",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(cmd, args, driver.StageLower)
			if err != nil || !dump {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range res.Units {
				if u.Module == nil {
					continue
				}
				if len(res.Units) > 1 {
					fmt.Fprintf(out, "== %s ==\n", u.Path)
				}
				if err := ir.DumpTo(out, u.Module); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addOutputFlags(cmd)
	cmd.Flags().BoolVar(&dump, "dump", false, "print the lowered IR to stdout")
	return cmd
}
