// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayout(t *testing.T) {
	dc := &DownloadConfig{SimulationName: "150MPC", Publication: "agora-halos"}

	t.Run("store with default output path gets a simulation folder", func(t *testing.T) {
		l := NewLayout(Target{Kind: TargetStore}, Settings{OutputPath: "."}, dc)
		if l.Root != "cosmICweb-zooms-150MPC" {
			t.Errorf("unexpected root %q", l.Root)
		}
	})

	t.Run("store with explicit output path keeps it", func(t *testing.T) {
		l := NewLayout(Target{Kind: TargetStore}, Settings{OutputPath: "/data/ics"}, dc)
		if l.Root != "/data/ics" {
			t.Errorf("unexpected root %q", l.Root)
		}
	})

	t.Run("publication wraps in publication folder", func(t *testing.T) {
		l := NewLayout(Target{Kind: TargetPublication}, Settings{OutputPath: "/data"}, dc)
		if l.Root != filepath.Join("/data", "agora-halos") {
			t.Errorf("unexpected root %q", l.Root)
		}
	})

	t.Run("collection wraps in simulation folder", func(t *testing.T) {
		l := NewLayout(Target{Kind: TargetCollection}, Settings{OutputPath: "/data"}, dc)
		if l.Root != filepath.Join("/data", "150MPC") {
			t.Errorf("unexpected root %q", l.Root)
		}
	})
}

func TestLayout_Paths(t *testing.T) {
	h := Halo{ID: 42, Name: "halo_42"}

	t.Run("per-halo directories by default", func(t *testing.T) {
		l := Layout{Root: "/out"}
		if got := l.HaloDir(h); got != filepath.Join("/out", "halo_42") {
			t.Errorf("unexpected dir %q", got)
		}
		if got := l.FilePath(h, "ellipsoids.json"); got != filepath.Join("/out", "halo_42", "ellipsoids.json") {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("common directory flattens and suffixes", func(t *testing.T) {
		l := Layout{Root: "/out", Common: true}
		if got := l.HaloDir(h); got != "/out" {
			t.Errorf("unexpected dir %q", got)
		}
		if got := l.FilePath(h, "ellipsoids.json"); got != filepath.Join("/out", "ellipsoids_halo_42.json") {
			t.Errorf("unexpected path %q", got)
		}
		// Distinct halos never collide on the same name.
		other := Halo{ID: 7, Name: "halo_7"}
		if l.FilePath(h, "ellipsoids.json") == l.FilePath(other, "ellipsoids.json") {
			t.Error("common-directory paths collide across halos")
		}
	})
}

func TestLayout_Ensure(t *testing.T) {
	h := Halo{ID: 1, Name: "halo_1"}
	l := Layout{Root: t.TempDir()}

	dir, err := l.Ensure(h)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	// Idempotent on the second call.
	if again, err := l.Ensure(h); err != nil || again != dir {
		t.Fatalf("Ensure not idempotent: %v", err)
	}

	// A file blocking the path surfaces as a FilesystemError.
	blocked := Layout{Root: filepath.Join(l.Root, "blocked")}
	if err := os.WriteFile(blocked.Root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = blocked.Ensure(h)
	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Errorf("expected FilesystemError, got %v", err)
	}
}
