// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

/*
Package cosmicweb downloads pre-generated zoom-in initial-condition files from
a cosmICweb service.

A download is described by a Target (a store UUID, a collection UUID, or a
publication name) and Settings. Resolve fetches the manifest; Download fetches
the manifest and then every file of every halo, sequentially, retrying
ellipsoid files up to Settings.Attempts times.

	target := cosmicweb.Target{
	    Kind: cosmicweb.TargetStore,
	    ID:   "f5399734-ad67-432b-ba4d-61bc2088136a",
	}
	cfg := cosmicweb.DefaultSettings()
	cfg.OutputPath = "./ics"

	summary, err := cosmicweb.Download(context.Background(), target, cfg, func(e cosmicweb.ProgressEvent) {
	    fmt.Printf("[%s] %s %s\n", e.Event, e.Path, e.Message)
	})
	if err != nil {
	    log.Fatal(err) // resolver failure, nothing downloaded
	}
	for _, o := range summary.Failed() {
	    fmt.Fprintf(os.Stderr, "failed: %s/%s: %v\n", o.Halo, o.Name, o.Err)
	}

Per-file failures never abort the batch; they end up in the Summary. When the
manifest carries MUSIC configuration sections, a composed ics.cfg is written
into each halo's directory from the downloaded ellipsoid payload.
*/
package cosmicweb
