// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"strings"
	"testing"
	"time"
)

func fixtureConfig() *DownloadConfig {
	return &DownloadConfig{
		SimulationName:  "150MPC",
		ProjectName:     "CosmOCA",
		TracebackRadius: 10,
		MUSIC: ICSections{
			Setup:     "boxlength   = 150\nzstart      = 50\nlevelmin    = 7\nlevelmin_TF = 7\nlevelmax    = 9\npadding     = 16",
			Cosmology: "Omega_m  = 0.309\nOmega_L  = 0.691\nH0       = 67.74",
			Random:    "cubesize = 256\nseed[9]  = 74927",
			Poisson:   "fft_fine      = true\r\naccuracy      = 1e-5",
		},
		Settings: &OutputSettings{
			OutputType:     "gadget2",
			Resolution:     Resolution{Low: 8, High: 12},
			StartRedshift:  99,
			OutputFilename: "ics.dat",
			OutputOptions:  [][2]string{{"gadget_num_files", "8"}},
		},
	}
}

func fixtureEllipsoid() Ellipsoid {
	return Ellipsoid{
		Center:           []float64{0.42174551551333334, 0.42890526632, 0.27975938776000003},
		Shape:            [][]float64{{872.2886068575001, -31.76815629375, 92.22811563824999}, {-31.76815629375, 520.6134379275, 28.34206946775}, {92.22811563824999, 28.34206946775, 165.70762251300002}},
		TracebackRadius:  10,
		RadiusDefinition: "Rvir",
	}
}

func TestApplyParameters(t *testing.T) {
	in := "levelmin    = 7\nlevelmax    = 9\nboxlength   = 150"
	out := applyParameters(in, map[string]string{"levelmin": "8", "levelmax": "12"})

	want := "levelmin    = 8\nlevelmax    = 12\nboxlength   = 150"
	if out != want {
		t.Errorf("applyParameters:\n got %q\nwant %q", out, want)
	}
}

func TestMusicTemplate(t *testing.T) {
	tpl := MusicTemplate(fixtureConfig())

	for _, want := range []string{
		"[setup]",
		ellipsoidPlaceholder,
		"[cosmology]",
		"[random]",
		"[poisson]",
		"levelmin    = 8",
		"levelmin_TF = 8",
		"levelmax    = 12",
		"zstart      = 99",
		"[output]",
		"format = gadget2",
		"filename = ics.dat",
		"gadget_num_files = 8",
	} {
		if !strings.Contains(tpl, want) {
			t.Errorf("template missing %q", want)
		}
	}
	if strings.Contains(tpl, "\r\n") {
		t.Error("template contains CRLF line endings")
	}
}

func TestMusicTemplate_NoOutputSettings(t *testing.T) {
	dc := fixtureConfig()
	dc.Settings = nil
	tpl := MusicTemplate(dc)

	if !strings.Contains(tpl, "[output]") {
		t.Error("template missing output section stub")
	}
	// Original parameter values survive untouched.
	if !strings.Contains(tpl, "levelmin    = 7") {
		t.Error("template parameters were modified without settings")
	}
}

func TestComposeICS(t *testing.T) {
	dc := fixtureConfig()
	h := Halo{ID: 208416759, Name: "halo_208416759"}
	now := time.Date(2024, 4, 20, 22, 26, 13, 916577000, time.UTC)

	cfg := ComposeICS(dc, h, fixtureEllipsoid(), now)

	for _, want := range []string{
		"# Zoom Initial Conditions for halo 208416759 (halo_208416759) in simulation 150MPC (CosmOCA project)",
		"# Details on this halo can be found on https://cosmicweb.eu/simulation/150MPC/halo/208416759",
		"# This file has been generated by CosmICweb @2024-04-20T22:26:13.916577",
		"# particles within 10.0 Rvir of the halo center",
		"region = ellipsoid",
		"region_ellipsoid_matrix[0] = 872.2886068575001, -31.76815629375, 92.22811563824999",
		"region_ellipsoid_matrix[1] = -31.76815629375, 520.6134379275, 28.34206946775",
		"region_ellipsoid_matrix[2] = 92.22811563824999, 28.34206946775, 165.70762251300002",
		"region_ellipsoid_center    = 0.42174551551333334, 0.42890526632, 0.27975938776000003",
	} {
		if !strings.Contains(cfg, want) {
			t.Errorf("composed config missing %q", want)
		}
	}
	if strings.Contains(cfg, ellipsoidPlaceholder) {
		t.Error("placeholder was not replaced")
	}
}

func TestEllipsoidForRadius(t *testing.T) {
	es := []Ellipsoid{
		{TracebackRadius: 2},
		{TracebackRadius: 10},
	}
	if e := EllipsoidForRadius(es, 10); e == nil || e.TracebackRadius != 10 {
		t.Errorf("expected radius-10 fit, got %v", e)
	}
	if e := EllipsoidForRadius(es, 4); e != nil {
		t.Errorf("expected nil for missing radius, got %v", e)
	}
}

func TestParseEllipsoids(t *testing.T) {
	es, err := ParseEllipsoids([]byte(ellipsoidPayload))
	if err != nil {
		t.Fatalf("ParseEllipsoids failed: %v", err)
	}
	if len(es) != 2 {
		t.Fatalf("expected 2 fits, got %d", len(es))
	}
	if es[1].TracebackRadius != 10 || es[1].RadiusDefinition != "Rvir" {
		t.Errorf("unexpected fit: %+v", es[1])
	}

	if _, err := ParseEllipsoids([]byte(`{"not": "a list"}`)); err == nil {
		t.Error("expected error for non-list payload")
	}
}
