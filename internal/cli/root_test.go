// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"cosmicweb/pkg/cosmicweb"
)

// newRunServer serves a one-halo collection whose ellipsoid endpoint either
// succeeds or always fails.
func newRunServer(t *testing.T, fileOK bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/files/ellipsoids.json", func(w http.ResponseWriter, r *http.Request) {
		if !fileOK {
			http.Error(w, "ellipsoid generation failed", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"ellips_center": [0.4, 0.4, 0.3], "ellips_matrix": [[1, 0, 0], [0, 1, 0], [0, 0, 1]], "traceback_radius": 2.0, "radius_definition": "Rvir"}]`)
	})
	mux.HandleFunc("/api/collections/col-run", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"simulation": {"name": "150MPC", "project_name": "CosmOCA", "api_url": %q, "api_id": "150MPC", "api_token": "", "ics": {}},
			"halos": [{"id": 1, "name": "halo_1", "files": [{"kind": "ellipsoid", "url": %q, "name": "ellipsoids.json"}]}]
		}`, srv.URL, srv.URL+"/files/ellipsoids.json")
	})

	return srv
}

func TestRunTarget_FailedFilesMakeTheCommandFail(t *testing.T) {
	srv := newRunServer(t, false)
	ro := &RootOpts{URL: srv.URL, OutputPath: t.TempDir(), Attempts: 1, Quiet: true}
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())

	err := runTarget(cmd, ro, cosmicweb.Target{Kind: cosmicweb.TargetCollection, ID: "col-run"})
	if err == nil {
		t.Fatal("expected an error when downloads fail")
	}
	if !strings.Contains(err.Error(), "failed to download") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunTarget_SuccessReturnsNil(t *testing.T) {
	srv := newRunServer(t, true)
	ro := &RootOpts{URL: srv.URL, OutputPath: t.TempDir(), Attempts: 1, Quiet: true}
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())

	if err := runTarget(cmd, ro, cosmicweb.Target{Kind: cosmicweb.TargetCollection, ID: "col-run"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
