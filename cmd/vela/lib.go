package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vela/internal/driver"
	"vela/internal/library"
	"vela/internal/symbols"
	"vela/internal/version"
)

func newLibCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lib",
		Short: "Build, pack and inspect libraries",
	}
	cmd.AddCommand(newLibBuildCmd(), newLibPackCmd(), newLibInspectCmd())
	return cmd
}

func newLibBuildCmd() *cobra.Command {
	var (
		outDir  string
		name    string
		depends []string
		targets []string
		pack    bool
	)
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Check units and write their public declarations as a library",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(cmd, args, driver.StageCheck)
			if err != nil {
				return err
			}
			var decls []symbols.ExternalDecl
			for _, u := range res.Units {
				decls = append(decls, library.Export(u.Module)...)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(filepath.Clean(outDir)), library.PackExt)
			}
			w, err := library.NewWriter(outDir)
			if err != nil {
				return err
			}
			manifest := library.Manifest{UniqueName: name, NativeTargets: targets, Depends: depends}
			if err := w.Write(manifest, decls); err != nil {
				return err
			}
			written := outDir
			if pack {
				written = filepath.Clean(outDir) + library.PackExt
				if err := library.Pack(outDir, written); err != nil {
					return err
				}
			}
			if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "library %s: %d declarations written to %s\n", name, len(decls), written)
			}
			return nil
		},
	}
	addOutputFlags(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "library directory to write")
	cmd.Flags().StringVar(&name, "name", "", "unique library name (defaults to the directory name)")
	cmd.Flags().StringSliceVar(&depends, "depends", nil, "libraries this one depends on")
	cmd.Flags().StringSliceVar(&targets, "target", nil, "native targets recorded in the manifest")
	cmd.Flags().BoolVar(&pack, "pack", false, "also write a "+library.PackExt+" archive next to the directory")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newLibPackCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Pack a library directory into a " + library.PackExt + " archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Clean(args[0])
			r, err := library.Open(dir)
			if err != nil {
				return err
			}
			_ = r.Close()
			if out == "" {
				out = dir + library.PackExt
			}
			if err := library.Pack(dir, out); err != nil {
				return err
			}
			if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "packed %s into %s\n", dir, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (defaults to <dir>"+library.PackExt+")")
	return cmd
}

func newLibInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <library>",
		Short: "Show the manifest and declarations of a library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := library.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			m := r.Manifest()
			fmt.Fprintf(out, "name:     %s\n", m.UniqueName)
			fmt.Fprintf(out, "abi:      %s (compiler reads up to %s)\n", m.ABIVersion, version.ABIVersion)
			fmt.Fprintf(out, "compiler: %s\n", m.CompilerVersion)
			if len(m.NativeTargets) > 0 {
				fmt.Fprintf(out, "targets:  %s\n", strings.Join(m.NativeTargets, ", "))
			}
			if len(m.Depends) > 0 {
				fmt.Fprintf(out, "depends:  %s\n", strings.Join(m.Depends, ", "))
			}
			pkgs, err := r.Packages()
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				names, err := r.PackageDecls(pkg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "package %s\n", pkg)
				for _, n := range names {
					d, err := r.FindDecl(n)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %-9s %s\n", d.Kind, n)
				}
			}
			return nil
		},
	}
}
