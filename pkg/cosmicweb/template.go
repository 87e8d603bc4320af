// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ellipsoidPlaceholder marks where the refinement region block is inserted
// into the MUSIC template.
const ellipsoidPlaceholder = "<ELLIPSOID_TEMPLATE>"

// ParseEllipsoids decodes an ellipsoid endpoint payload. The endpoint serves
// one fit per traceback radius.
func ParseEllipsoids(data []byte) ([]Ellipsoid, error) {
	var es []Ellipsoid
	if err := json.Unmarshal(data, &es); err != nil {
		return nil, fmt.Errorf("parse ellipsoids: %w", err)
	}
	return es, nil
}

// EllipsoidForRadius picks the fit for the requested traceback radius,
// or nil when the payload has none.
func EllipsoidForRadius(es []Ellipsoid, radius float64) *Ellipsoid {
	for i := range es {
		if es[i].TracebackRadius == radius {
			return &es[i]
		}
	}
	return nil
}

// MusicTemplate assembles the MUSIC configuration template from the manifest's
// IC sections, with a placeholder for the per-halo refinement region. Store
// settings (resolution levels, start redshift, output block) are applied when
// present.
func MusicTemplate(dc *DownloadConfig) string {
	var b strings.Builder
	section := func(name, body string) {
		b.WriteString("[" + name + "]\n")
		b.WriteString(normalizeLineEndings(body))
		b.WriteString("\n\n")
	}

	section("setup", dc.MUSIC.Setup)
	b.WriteString(ellipsoidPlaceholder + "\n\n")
	section("cosmology", dc.MUSIC.Cosmology)
	section("random", dc.MUSIC.Random)
	section("poisson", dc.MUSIC.Poisson)

	config := b.String()
	settings := dc.Settings
	if settings != nil {
		config = applyParameters(config, map[string]string{
			"levelmin":    strconv.Itoa(settings.Resolution.Low),
			"levelmin_TF": strconv.Itoa(settings.Resolution.Low),
			"levelmax":    strconv.Itoa(settings.Resolution.High),
			"zstart":      strconv.Itoa(settings.StartRedshift),
		})
	}
	if settings != nil && settings.OutputType != "" {
		config += fmt.Sprintf("[output]\nformat = %s\nfilename = %s\n", settings.OutputType, settings.OutputFilename)
		for _, kv := range settings.OutputOptions {
			config += fmt.Sprintf("%s = %s\n", kv[0], kv[1])
		}
	} else {
		config += "[output]\n# add output options here\n"
	}
	return config
}

// applyParameters overwrites "key = value" assignments in a config template,
// preserving each line's alignment up to the equals sign.
func applyParameters(config string, params map[string]string) string {
	lines := strings.Split(config, "\n")
	for i, line := range lines {
		key, _, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if v, ok := params[strings.TrimSpace(key)]; ok {
			lines[i] = key + "= " + v
		}
	}
	return strings.Join(lines, "\n")
}

// ComposeICS renders the final per-halo MUSIC configuration: a provenance
// header, the template, and the halo's ellipsoidal refinement region.
func ComposeICS(dc *DownloadConfig, h Halo, e Ellipsoid, now time.Time) string {
	var region strings.Builder
	region.WriteString("# Ellipsoidal refinement region defined on unity cube\n")
	region.WriteString("# This minimum bounding ellipsoid has been obtained from\n")
	fmt.Fprintf(&region, "# particles within %s %s of the halo center\n",
		formatRadius(e.TracebackRadius), e.RadiusDefinition)
	region.WriteString("region = ellipsoid\n")
	for i := 0; i < len(e.Shape) && i < 3; i++ {
		fmt.Fprintf(&region, "region_ellipsoid_matrix[%d] = %s\n", i, joinFloats(e.Shape[i]))
	}
	fmt.Fprintf(&region, "region_ellipsoid_center    = %s\n", joinFloats(e.Center))

	template := strings.Replace(MusicTemplate(dc), ellipsoidPlaceholder, region.String(), 1)

	header := fmt.Sprintf(
		"# Zoom Initial Conditions for halo %d (%s) in simulation %s (%s project)\n"+
			"# Details on this halo can be found on https://cosmicweb.eu/simulation/%s/halo/%d\n"+
			"# This file has been generated by CosmICweb @%s\n\n\n",
		h.ID, h.Name, dc.SimulationName, dc.ProjectName,
		dc.SimulationName, h.ID,
		now.Format("2006-01-02T15:04:05.000000"),
	)
	return header + template + "\n"
}

// normalizeLineEndings strips carriage returns the web editor may have left in
// the stored sections.
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatRadius always keeps a decimal point ("2.0", not "2") to match the
// header style the service's own generator uses.
func formatRadius(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func joinFloats(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, ", ")
}
