// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout decides where a halo's files end up on disk.
//
// Default layout is one subdirectory per halo under Root. With Common set,
// every halo shares Root directly and file names get a halo suffix so that
// destination names stay unique across halos.
type Layout struct {
	Root   string
	Common bool
}

// NewLayout resolves the output root for a run:
//   - publication targets wrap everything in a subfolder named after the
//     publication,
//   - collection targets in a subfolder named after the simulation,
//   - store targets with an unset output path default to
//     "cosmICweb-zooms-<simulation>".
func NewLayout(target Target, cfg Settings, dc *DownloadConfig) Layout {
	root := cfg.OutputPath
	if root == "" {
		root = "."
	}
	switch target.Kind {
	case TargetPublication:
		root = filepath.Join(root, dc.Publication)
	case TargetCollection:
		root = filepath.Join(root, dc.SimulationName)
	default:
		if root == "." || root == "./" {
			root = fmt.Sprintf("cosmICweb-zooms-%s", dc.SimulationName)
		}
	}
	return Layout{Root: root, Common: cfg.CommonDirectory}
}

// HaloDir returns the directory a halo's files belong in.
func (l Layout) HaloDir(h Halo) string {
	if l.Common {
		return l.Root
	}
	return filepath.Join(l.Root, h.Name)
}

// FilePath returns the destination path for one of a halo's files.
func (l Layout) FilePath(h Halo, name string) string {
	if l.Common {
		return filepath.Join(l.Root, suffixName(name, h.Name))
	}
	return filepath.Join(l.HaloDir(h), name)
}

// Ensure creates the halo's directory tree, succeeding if already present.
func (l Layout) Ensure(h Halo) (string, error) {
	dir := l.HaloDir(h)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &FilesystemError{Path: dir, Err: err}
	}
	return dir, nil
}

// suffixName inserts the halo name before the file extension:
// "ellipsoids.json" for halo_42 becomes "ellipsoids_halo_42.json".
func suffixName(name, halo string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + halo + ext
}
