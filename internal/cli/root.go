// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cosmicweb/pkg/cosmicweb"
)

// RootOpts holds global CLI options.
type RootOpts struct {
	URL             string
	OutputPath      string
	CommonDirectory bool
	Attempts        int
	Timeout         string
	Token           string
	Verbose         bool
	Quiet           bool
	JSONOut         bool
	Config          string
}

// Execute runs the CLI with the given version string.
func Execute(version string) error {
	ro := &RootOpts{}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	root := &cobra.Command{
		Use:           "cosmicweb",
		Short:         "Download zoom-in initial conditions from the cosmICweb service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Global flags
	root.PersistentFlags().StringVar(&ro.URL, "url", cosmicweb.DefaultBaseURL, "Overwrite URL of the cosmICweb server (also reads COSMICWEB_URL env)")
	root.PersistentFlags().StringVar(&ro.OutputPath, "output-path", ".", "Download target for IC files; publications get a subfolder named after the publication")
	root.PersistentFlags().BoolVar(&ro.CommonDirectory, "common-directory", false, "Store all files in the output directory itself instead of one directory per halo")
	root.PersistentFlags().IntVar(&ro.Attempts, "attempts", 3, "Number of attempts for ellipsoid downloads")
	root.PersistentFlags().StringVar(&ro.Timeout, "timeout", "30s", "Per-request timeout")
	root.PersistentFlags().StringVar(&ro.Token, "token", "", "API token override for private simulations (also reads COSMICWEB_TOKEN env)")
	root.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "Verbose logs (per-request detail)")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "Quiet mode (errors only)")
	root.PersistentFlags().BoolVar(&ro.JSONOut, "json", false, "Emit machine-readable JSON events")
	root.PersistentFlags().StringVar(&ro.Config, "config", "", "Path to config file (JSON or YAML)")

	root.AddCommand(newGetCmd(ro))
	root.AddCommand(newCollectionCmd(ro))
	root.AddCommand(newPublicationCmd(ro))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd(version))
	root.SetHelpCommand(&cobra.Command{Use: "help", Hidden: true})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// runTarget performs a full download run and maps its Summary onto the
// process outcome: any failed file makes the command (and the process) fail.
func runTarget(cmd *cobra.Command, ro *RootOpts, target cosmicweb.Target) error {
	cfg := cosmicweb.Settings{
		BaseURL:         ro.URL,
		OutputPath:      ro.OutputPath,
		CommonDirectory: ro.CommonDirectory,
		Attempts:        ro.Attempts,
		Timeout:         ro.Timeout,
		Token:           ro.Token,
	}

	progress, done := newProgress(ro)
	summary, err := cosmicweb.Download(cmd.Context(), target, cfg, progress)
	done()
	if err != nil {
		return err
	}

	if failed := summary.Failed(); len(failed) > 0 {
		for _, o := range failed {
			fmt.Fprintf(os.Stderr, "failed: %s/%s: %v\n", o.Halo, o.Name, o.Err)
		}
		return fmt.Errorf("%d of %d file(s) failed to download", len(failed), len(summary.Outcomes))
	}
	return nil
}
