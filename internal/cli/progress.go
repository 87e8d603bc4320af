// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"

	"cosmicweb/pkg/cosmicweb"
)

// newProgress picks the progress renderer for a run. The returned done func
// flushes whatever the renderer left on screen.
func newProgress(ro *RootOpts) (cosmicweb.ProgressFunc, func()) {
	switch {
	case ro.JSONOut:
		return jsonProgress(os.Stdout), func() {}
	case ro.Verbose:
		return verboseProgress(os.Stderr), func() {}
	case ro.Quiet:
		return quietProgress(os.Stderr), func() {}
	default:
		r := &barRenderer{}
		return r.handle, r.close
	}
}

// barRenderer shows a file-count progress bar between resolve and done.
type barRenderer struct {
	bar *pb.ProgressBar
}

func (r *barRenderer) handle(ev cosmicweb.ProgressEvent) {
	switch ev.Event {
	case "resolve_done":
		fmt.Println(ev.Message)
		if ev.Total > 0 {
			r.bar = pb.StartNew(ev.Total)
			r.bar.SetWriter(os.Stderr)
		}
	case "file_done":
		if r.bar != nil {
			r.bar.Increment()
		}
	case "error":
		if r.bar != nil && ev.Path != "" {
			r.bar.Increment()
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
	case "done":
		r.close()
		fmt.Println(ev.Message)
	}
}

func (r *barRenderer) close() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

// verboseProgress prints every event, one line each.
func verboseProgress(w io.Writer) cosmicweb.ProgressFunc {
	return func(ev cosmicweb.ProgressEvent) {
		level := ev.Level
		if level == "" {
			level = "info"
		}
		line := ev.Event
		if ev.Halo != "" {
			line += " " + ev.Halo
		}
		if ev.Path != "" {
			line += " " + ev.Path
		}
		if ev.Attempt > 0 {
			line += fmt.Sprintf(" (attempt %d)", ev.Attempt)
		}
		if ev.Message != "" {
			line += ": " + ev.Message
		}
		fmt.Fprintf(w, "%s %-5s %s\n", ev.Time.Format("2006-01-02 15:04:05"), level, line)
	}
}

// quietProgress prints errors only.
func quietProgress(w io.Writer) cosmicweb.ProgressFunc {
	return func(ev cosmicweb.ProgressEvent) {
		if ev.Event == "error" {
			fmt.Fprintf(w, "error: %s\n", ev.Message)
		}
	}
}

// jsonProgress emits JSON-lines events.
func jsonProgress(w io.Writer) cosmicweb.ProgressFunc {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return func(ev cosmicweb.ProgressEvent) {
		_ = enc.Encode(ev)
	}
}
