// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Wire shapes for the metadata endpoints. The schema is owned by the service;
// only the fields needed here are declared, everything else is ignored.

type wireSimulation struct {
	Name        string     `json:"name"`
	ProjectName string     `json:"project_name"`
	APIURL      string     `json:"api_url"`
	APIID       flexID     `json:"api_id"`
	APIToken    string     `json:"api_token"`
	ICs         ICSections `json:"ics"`
}

// flexID accepts both string and numeric identifiers; the service uses either
// depending on the simulation.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// wireHalo is one halo entry. Download stores list halos as bare IDs,
// collections and publications as objects with id/name; either form may carry
// an explicit files manifest that overrides the derived one. Name may be null.
type wireHalo struct {
	ID    *int64      `json:"id"`
	Name  string      `json:"name"`
	Files []FileEntry `json:"files"`
}

func (h *wireHalo) UnmarshalJSON(b []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		var id int64
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		h.ID = &id
		return nil
	}
	type bare wireHalo // avoid recursing into this method
	var v bare
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*h = wireHalo(v)
	return nil
}

// wireStore is the download-store manifest; it carries the store's traceback
// radius and output configuration alongside the halo list.
type wireStore struct {
	Simulation      *wireSimulation `json:"simulation"`
	Halos           []wireHalo      `json:"halos"`
	TracebackRadius float64         `json:"traceback_radius"`
	Configuration   *OutputSettings `json:"configuration"`
}

type wireGroup struct {
	Simulation *wireSimulation `json:"simulation"`
	Halos      []wireHalo      `json:"halos"`
}

// Resolve fetches and normalizes the manifest for a target. It performs one
// metadata request and no retries; a 404 satisfies errors.Is(err, ErrNotFound).
func Resolve(ctx context.Context, target Target, cfg Settings) (*DownloadConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return resolve(ctx, newClient(cfg), target)
}

func resolve(ctx context.Context, c *client, target Target) (*DownloadConfig, error) {
	if target.ID == "" {
		return nil, ErrMissingTarget
	}
	switch target.Kind {
	case TargetStore:
		return resolveStore(ctx, c, target)
	case TargetCollection:
		return resolveGroup(ctx, c, collectionURL(c.base, target.ID), target)
	case TargetPublication:
		dc, err := resolveGroup(ctx, c, publicationURL(c.base, target.ID), target)
		if err != nil {
			return nil, err
		}
		dc.Publication = target.ID
		return dc, nil
	default:
		return nil, fmt.Errorf("unknown target kind %q", target.Kind)
	}
}

func resolveStore(ctx context.Context, c *client, target Target) (*DownloadConfig, error) {
	urlStr := storeURL(c.base, target.ID)
	var m wireStore
	if err := c.getJSON(ctx, urlStr, "", &m); err != nil {
		return nil, err
	}
	sim, err := checkSimulation(m.Simulation, urlStr)
	if err != nil {
		return nil, err
	}
	halos, err := normalizeHalos(sim, m.Halos, urlStr)
	if err != nil {
		return nil, err
	}

	return &DownloadConfig{
		SimulationName:  sim.Name,
		ProjectName:     sim.ProjectName,
		TracebackRadius: m.TracebackRadius,
		APIToken:        sim.APIToken,
		MUSIC:           sim.ICs,
		Settings:        m.Configuration,
		Halos:           halos,
	}, nil
}

func resolveGroup(ctx context.Context, c *client, urlStr string, target Target) (*DownloadConfig, error) {
	var m wireGroup
	if err := c.getJSON(ctx, urlStr, "", &m); err != nil {
		return nil, err
	}
	sim, err := checkSimulation(m.Simulation, urlStr)
	if err != nil {
		return nil, err
	}
	halos, err := normalizeHalos(sim, m.Halos, urlStr)
	if err != nil {
		return nil, err
	}

	rtb := target.TracebackRadius
	if rtb == 0 {
		rtb = 2
	}
	return &DownloadConfig{
		SimulationName:  sim.Name,
		ProjectName:     sim.ProjectName,
		TracebackRadius: rtb,
		APIToken:        sim.APIToken,
		MUSIC:           sim.ICs,
		Halos:           halos,
	}, nil
}

func checkSimulation(sim *wireSimulation, urlStr string) (*wireSimulation, error) {
	if sim == nil {
		return nil, &APIError{Message: "manifest is missing the simulation block", URL: urlStr}
	}
	if sim.APIURL == "" {
		return nil, &APIError{Message: "manifest simulation block is missing api_url", URL: urlStr}
	}
	return sim, nil
}

// normalizeHalos validates the wire halos and fills in the derived defaults:
// display name "halo_<id>" and a manifest holding the halo's ellipsoid payload
// when the service did not list files explicitly.
func normalizeHalos(sim *wireSimulation, wire []wireHalo, urlStr string) ([]Halo, error) {
	halos := make([]Halo, 0, len(wire))
	for i, wh := range wire {
		if wh.ID == nil {
			return nil, &APIError{Message: fmt.Sprintf("manifest halo %d is missing its id", i), URL: urlStr}
		}
		name := wh.Name
		if name == "" {
			name = fmt.Sprintf("halo_%d", *wh.ID)
		}
		hURL := haloURL(sim.APIURL, string(sim.APIID), *wh.ID)
		h := Halo{ID: *wh.ID, Name: name, URL: hURL}

		if len(wh.Files) > 0 {
			for j, f := range wh.Files {
				if f.URL == "" || f.Name == "" || f.Kind == "" {
					return nil, &APIError{
						Message: fmt.Sprintf("manifest file %d of halo %s is missing kind, url or name", j, name),
						URL:     urlStr,
					}
				}
			}
			h.Files = wh.Files
		} else {
			h.Files = []FileEntry{
				{Kind: FileEllipsoid, URL: ellipsoidsURL(hURL), Name: "ellipsoids.json"},
			}
		}
		halos = append(halos, h)
	}
	return halos, nil
}
