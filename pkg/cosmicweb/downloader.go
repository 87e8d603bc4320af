// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// retryPause separates ellipsoid retry attempts. The retry budget is tiny and
// the failures it covers are transient generation errors, so a short fixed
// pause is enough; no exponential backoff.
const retryPause = 500 * time.Millisecond

// icsFileName is the composed MUSIC configuration written next to a halo's
// downloads when the manifest carries IC sections.
const icsFileName = "ics.cfg"

// Download resolves a target and downloads every file of every halo in
// manifest order, sequentially. Ellipsoid files are retried up to
// Settings.Attempts times; all other kinds are requested exactly once.
//
// A resolver failure is returned as an error and nothing is downloaded.
// Per-halo and per-file failures never abort the batch: they are recorded in
// the returned Summary, which the caller turns into the process exit status.
func Download(ctx context.Context, target Target, cfg Settings, progress ProgressFunc) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}

	c := newClient(cfg)

	emit := func(ev ProgressEvent) {
		if progress != nil {
			if ev.Time.IsZero() {
				ev.Time = time.Now()
			}
			progress(ev)
		}
	}

	emit(ProgressEvent{Event: "resolve_start", Message: fmt.Sprintf("fetching %s %s", target.Kind, target.ID)})

	dc, err := resolve(ctx, c, target)
	if err != nil {
		return nil, err
	}

	token := dc.APIToken
	if cfg.Token != "" {
		token = cfg.Token
	}

	layout := NewLayout(target, cfg, dc)

	total := 0
	for _, h := range dc.Halos {
		total += len(h.Files)
	}
	emit(ProgressEvent{
		Event: "resolve_done",
		Total: total,
		Message: fmt.Sprintf("%s (%s project): %d halo(s), %d file(s) -> %s",
			dc.SimulationName, dc.ProjectName, len(dc.Halos), total, layout.Root),
	})

	summary := &Summary{}

	for _, h := range dc.Halos {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		emit(ProgressEvent{Event: "halo_start", Halo: h.Name})

		if _, err := layout.Ensure(h); err != nil {
			// The halo's directory is unusable; every one of its files fails,
			// the rest of the batch continues.
			emit(ProgressEvent{Level: "error", Event: "error", Halo: h.Name, Message: err.Error()})
			for _, f := range h.Files {
				summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: f.Name, Err: err})
			}
			continue
		}

		var ellipsoidPath string
		for _, f := range h.Files {
			dst := layout.FilePath(h, f.Name)
			attempts := 1
			if f.Kind == FileEllipsoid {
				attempts = cfg.Attempts
			}

			emit(ProgressEvent{Event: "file_start", Halo: h.Name, Path: dst})
			made, err := c.downloadFile(ctx, f.URL, token, dst, attempts, func(attempt int, cause error) {
				emit(ProgressEvent{
					Level: "warn", Event: "retry", Halo: h.Name, Path: dst,
					Attempt: attempt, Message: cause.Error(),
				})
			})
			if err != nil {
				if ctx.Err() != nil {
					summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: f.Name, Attempts: made, Err: err})
					return summary, ctx.Err()
				}
				derr := &DownloadError{Halo: h.Name, Name: f.Name, Attempts: made, Err: err}
				emit(ProgressEvent{Level: "error", Event: "error", Halo: h.Name, Path: dst, Message: derr.Error()})
				summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: f.Name, Attempts: made, Err: derr})
				continue
			}
			summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: f.Name, Attempts: made})
			emit(ProgressEvent{Event: "file_done", Halo: h.Name, Path: dst})

			if f.Kind == FileEllipsoid && ellipsoidPath == "" {
				ellipsoidPath = dst
			}
		}

		if ellipsoidPath != "" && dc.MUSIC.Setup != "" {
			if out, err := composeForHalo(dc, h, layout, ellipsoidPath); err != nil {
				emit(ProgressEvent{Level: "warn", Event: "error", Halo: h.Name, Message: err.Error()})
				summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: icsFileName, Err: err})
			} else {
				summary.Outcomes = append(summary.Outcomes, Outcome{Halo: h.Name, Name: icsFileName})
				emit(ProgressEvent{Event: "compose_done", Halo: h.Name, Path: out})
			}
		}
	}

	failed := len(summary.Failed())
	emit(ProgressEvent{
		Event:   "done",
		Message: fmt.Sprintf("done: %d file(s), %d failed", len(summary.Outcomes), failed),
	})
	return summary, nil
}

// downloadFile streams a URL into dst, writing through a temp file so an
// interrupted transfer never leaves a truncated destination. It returns the
// number of requests actually made.
func (c *client) downloadFile(ctx context.Context, urlStr, token, dst string, attempts int, onRetry func(attempt int, cause error)) (int, error) {
	tmp := dst + ".part"
	var lastErr error
	made := 0

	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return made, ctx.Err()
		}
		made = attempt

		err := func() error {
			body, cancel, err := c.get(ctx, urlStr, token)
			if err != nil {
				return err
			}
			defer cancel()
			defer body.Close()

			out, err := os.Create(tmp)
			if err != nil {
				return &FilesystemError{Path: tmp, Err: err}
			}
			if _, err := io.Copy(out, body); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return &FilesystemError{Path: tmp, Err: err}
			}
			return os.Rename(tmp, dst)
		}()
		if err == nil {
			return made, nil
		}
		lastErr = err

		// Filesystem problems won't heal on retry.
		if _, ok := err.(*FilesystemError); ok {
			break
		}
		if attempt < attempts {
			onRetry(attempt, err)
			if !sleepCtx(ctx, retryPause) {
				return made, ctx.Err()
			}
		}
	}
	os.Remove(tmp)
	return made, lastErr
}

// composeForHalo turns a downloaded ellipsoid payload into the halo's MUSIC
// configuration file.
func composeForHalo(dc *DownloadConfig, h Halo, layout Layout, ellipsoidPath string) (string, error) {
	data, err := os.ReadFile(ellipsoidPath)
	if err != nil {
		return "", &FilesystemError{Path: ellipsoidPath, Err: err}
	}
	es, err := ParseEllipsoids(data)
	if err != nil {
		return "", err
	}
	e := EllipsoidForRadius(es, dc.TracebackRadius)
	if e == nil {
		return "", fmt.Errorf("no ellipsoid fit for traceback radius %s in %s", formatRadius(dc.TracebackRadius), ellipsoidPath)
	}

	out := layout.FilePath(h, icsFileName)
	cfgText := ComposeICS(dc, h, *e, time.Now())
	if err := os.WriteFile(out, []byte(cfgText), 0o644); err != nil {
		return "", &FilesystemError{Path: out, Err: err}
	}
	return out, nil
}

// sleepCtx waits for d or returns false if ctx is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
