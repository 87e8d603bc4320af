// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import "time"

// TargetKind selects which metadata endpoint of the cosmICweb service is queried.
type TargetKind string

const (
	// TargetStore fetches a single download store created on the website.
	TargetStore TargetKind = "store"
	// TargetCollection fetches a shared collection of halos.
	TargetCollection TargetKind = "collection"
	// TargetPublication fetches a named, curated publication dataset.
	TargetPublication TargetKind = "publication"
)

// Target identifies what to download.
//
// Example:
//
//	target := cosmicweb.Target{
//	    Kind: cosmicweb.TargetStore,
//	    ID:   "f5399734-ad67-432b-ba4d-61bc2088136a",
//	}
type Target struct {
	// Kind selects the endpoint: store, collection, or publication.
	Kind TargetKind

	// ID is the store/collection UUID or the publication name.
	ID string

	// TracebackRadius selects which ellipsoid fit to use for collection and
	// publication targets. Valid values are 1, 2, 4 and 10 (Rvir).
	// Store targets carry their own radius in the manifest; this field is
	// ignored for them. If zero, defaults to 2.
	TracebackRadius float64
}

// Settings configures download behavior.
//
// All fields have defaults; a zero Settings downloads into the current
// directory from the production service.
type Settings struct {
	// BaseURL is the cosmICweb service URL.
	// If empty, defaults to "https://cosmicweb.eu".
	BaseURL string

	// OutputPath is the directory downloads are placed under.
	// If empty, defaults to the current working directory. Store targets
	// with the default output path download into "cosmICweb-zooms-<simulation>".
	OutputPath string

	// CommonDirectory stores all files directly in the output root instead of
	// one subdirectory per halo. File names get a halo suffix so that halos
	// cannot collide.
	CommonDirectory bool

	// Attempts is the retry budget for ellipsoid downloads. Ellipsoid files
	// are generated on demand by the service and fail transiently more often
	// than static files. Other file kinds are requested exactly once.
	// If <= 0, defaults to 3.
	Attempts int

	// Timeout is the per-request timeout as a duration string ("30s", "2m").
	// If empty, defaults to "30s".
	Timeout string

	// Token overrides the API token from the manifest, for non-interactive
	// use against private simulations.
	Token string
}

// DefaultSettings returns Settings with defaults filled in.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:    DefaultBaseURL,
		OutputPath: ".",
		Attempts:   3,
		Timeout:    "30s",
	}
}

// File kinds known to the downloader. The service may introduce further kinds;
// unknown kinds are downloaded like config files (single attempt).
const (
	FileEllipsoid = "ellipsoid"
	FileConfig    = "config"
)

// FileEntry is one downloadable file in a halo's manifest.
type FileEntry struct {
	// Kind is the file role, e.g. "ellipsoid" or "config".
	Kind string `json:"kind"`
	// URL is the absolute download URL.
	URL string `json:"url"`
	// Name is the destination filename, unique within the halo's directory.
	Name string `json:"name"`
}

// Halo is one simulation target with its manifest of downloadable files.
type Halo struct {
	// ID is the halo identifier within its simulation.
	ID int64
	// Name is the display name, falling back to "halo_<id>".
	Name string
	// URL is the halo resource on the simulation API.
	URL string
	// Files lists the halo's downloads in manifest order.
	Files []FileEntry
}

// ICSections holds the MUSIC configuration sections served with a manifest.
type ICSections struct {
	Setup     string `json:"setup"`
	Random    string `json:"random"`
	Cosmology string `json:"cosmology"`
	Poisson   string `json:"poisson"`
}

// Resolution is the refinement level range configured for a download store.
type Resolution struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// OutputSettings is the optional per-store output configuration.
type OutputSettings struct {
	OutputType     string      `json:"outputType"`
	Resolution     Resolution  `json:"resolution"`
	OutputOptions  [][2]string `json:"outputOptions"`
	StartRedshift  int         `json:"startRedshift"`
	OutputFilename string      `json:"outputFilename"`
}

// DownloadConfig is a resolved manifest: the simulation metadata plus the list
// of halos to download.
type DownloadConfig struct {
	SimulationName  string
	ProjectName     string
	TracebackRadius float64
	APIToken        string
	MUSIC           ICSections
	Settings        *OutputSettings

	// Publication is the publication name for publication targets, empty
	// otherwise. It wraps the download layout in a subfolder.
	Publication string

	Halos []Halo
}

// Ellipsoid is the refinement region payload served by a halo's ellipsoid
// endpoint. One endpoint response carries fits for several traceback radii.
type Ellipsoid struct {
	Center           []float64   `json:"ellips_center"`
	Shape            [][]float64 `json:"ellips_matrix"`
	TracebackRadius  float64     `json:"traceback_radius"`
	RadiusDefinition string      `json:"radius_definition"`
}

// Outcome records the result of one file download.
type Outcome struct {
	// Halo is the halo's display name.
	Halo string
	// Name is the destination filename.
	Name string
	// Attempts is the number of HTTP requests made for this file.
	Attempts int
	// Err is nil on success.
	Err error
}

// Summary aggregates per-file outcomes for one run.
type Summary struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that ended in an error, in download order.
func (s *Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// OK reports whether every file downloaded successfully.
func (s *Summary) OK() bool {
	return len(s.Failed()) == 0
}

// ProgressEvent represents a progress update during a run.
//
// The Event field indicates the type of event:
//   - "resolve_start": manifest fetch has begun
//   - "resolve_done": manifest fetched; Total holds the overall file count
//   - "halo_start": downloads for a halo have started
//   - "file_start": download of a file has started
//   - "retry": a retry attempt is being made for an ellipsoid file
//   - "file_done": file download complete
//   - "compose_done": a MUSIC configuration file was written
//   - "error": a file or halo failed
//   - "done": the run finished; Message carries the summary line
type ProgressEvent struct {
	// Time is when the event occurred.
	Time time.Time `json:"time"`

	// Level is the log level: "debug", "info", "warn", "error".
	// Empty defaults to "info".
	Level string `json:"level,omitempty"`

	// Event is the event type identifier.
	Event string `json:"event"`

	// Halo is the halo the event belongs to, if any.
	Halo string `json:"halo,omitempty"`

	// Path is the destination path of the file being processed.
	Path string `json:"path,omitempty"`

	// Attempt is the retry attempt number (1-based), set in "retry" events.
	Attempt int `json:"attempt,omitempty"`

	// Total is the overall file count, set in "resolve_done" events.
	Total int `json:"total,omitempty"`

	// Message contains additional context or error details.
	Message string `json:"message,omitempty"`
}

// ProgressFunc is a callback for receiving progress events. Execution is
// sequential, so implementations need not be thread-safe.
type ProgressFunc func(ProgressEvent)
