// Command dualvis computes shortest paths around curved obstacles.
//
//	dualvis route scene.yaml --set angle-tolerance=0.02
//	dualvis dump scene.yaml -o graph.yaml
//	dualvis settings
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/npillmayer/dualvis/engine"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "dualvis",
		Short:        "Shortest paths around curved obstacles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				for _, key := range []string{"dualvis.engine", "dualvis.graph", "dualvis.tangent"} {
					tracing.Select(key).SetTraceLevel(tracing.LevelInfo)
				}
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace the computation")
	root.AddCommand(routeCmd(), dumpCmd(), settingsCmd())
	return root
}

func routeCmd() *cobra.Command {
	var settings []string
	cmd := &cobra.Command{
		Use:   "route <scene.yaml>",
		Short: "Compute the shortest path of a scene and report its length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := compute(cmd.Context(), args[0], settings)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), r.Report())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&settings, "set", nil, "override a setting, as name=value")
	return cmd
}

func dumpCmd() *cobra.Command {
	var settings []string
	var output string
	cmd := &cobra.Command{
		Use:   "dump <scene.yaml>",
		Short: "Write the visibility graph of a scene as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := compute(cmd.Context(), args[0], settings)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return r.Graph.Write(w)
		},
	}
	cmd.Flags().StringArrayVar(&settings, "set", nil, "override a setting, as name=value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "List the settings accepted by --set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range engine.Settings() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func compute(ctx context.Context, path string, settings []string) (*engine.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scene, cfg, err := engine.LoadScene(f)
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("setting %q: expected name=value", s)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", s, err)
		}
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	return engine.Compute(ctx, scene, cfg)
}
