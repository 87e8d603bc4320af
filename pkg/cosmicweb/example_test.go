// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb_test

import (
	"context"
	"fmt"
	"os"

	"cosmicweb/pkg/cosmicweb"
)

func ExampleDownload() {
	target := cosmicweb.Target{
		Kind: cosmicweb.TargetStore,
		ID:   "f5399734-ad67-432b-ba4d-61bc2088136a",
	}

	cfg := cosmicweb.DefaultSettings()
	cfg.OutputPath = "./ics"

	progress := func(e cosmicweb.ProgressEvent) {
		switch e.Event {
		case "resolve_done":
			fmt.Println(e.Message)
		case "file_done":
			fmt.Printf("downloaded: %s\n", e.Path)
		case "retry":
			fmt.Printf("retrying %s (attempt %d)\n", e.Path, e.Attempt)
		}
	}

	summary, err := cosmicweb.Download(context.Background(), target, cfg, progress)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	for _, o := range summary.Failed() {
		fmt.Fprintf(os.Stderr, "failed: %s/%s: %v\n", o.Halo, o.Name, o.Err)
	}
}

func ExampleDownload_publication() {
	// Download a published dataset; every halo gets its own directory under
	// a folder named after the publication.
	target := cosmicweb.Target{
		Kind:            cosmicweb.TargetPublication,
		ID:              "agora-halos",
		TracebackRadius: 2,
	}

	cfg := cosmicweb.DefaultSettings()
	cfg.OutputPath = "./downloads"

	_, _ = cosmicweb.Download(context.Background(), target, cfg, nil)
}

func ExampleResolve() {
	target := cosmicweb.Target{
		Kind: cosmicweb.TargetCollection,
		ID:   "9a7c1b52-90b6-4055-8a5a-a6e808a4f0c6",
	}

	dc, err := cosmicweb.Resolve(context.Background(), target, cosmicweb.DefaultSettings())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("%s (%s project), %d halo(s):\n", dc.SimulationName, dc.ProjectName, len(dc.Halos))
	for _, h := range dc.Halos {
		fmt.Printf("  %s: %d file(s)\n", h.Name, len(h.Files))
	}
}
