// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cosmicweb/pkg/cosmicweb"
)

func newGetCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get UUID",
		Short: "Download ICs using a target UUID generated on cosmICweb",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(cmd, ro, cosmicweb.Target{
				Kind: cosmicweb.TargetStore,
				ID:   args[0],
			})
		},
	}
}

func newCollectionCmd(ro *RootOpts) *cobra.Command {
	var radius string

	cmd := &cobra.Command{
		Use:   "collection UUID",
		Short: "Download shared ICs using the collection UUID",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rtb, err := parseRadius(radius)
			if err != nil {
				return err
			}
			return runTarget(cmd, ro, cosmicweb.Target{
				Kind:            cosmicweb.TargetCollection,
				ID:              args[0],
				TracebackRadius: rtb,
			})
		},
	}
	cmd.Flags().StringVar(&radius, "traceback-radius", "2", "Traceback radius of the ellipsoid fit: 1, 2, 4 or 10")
	return cmd
}

func newPublicationCmd(ro *RootOpts) *cobra.Command {
	var radius string

	cmd := &cobra.Command{
		Use:   "publication NAME",
		Short: "Download published ICs using the publication name",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rtb, err := parseRadius(radius)
			if err != nil {
				return err
			}
			return runTarget(cmd, ro, cosmicweb.Target{
				Kind:            cosmicweb.TargetPublication,
				ID:              args[0],
				TracebackRadius: rtb,
			})
		},
	}
	cmd.Flags().StringVar(&radius, "traceback-radius", "2", "Traceback radius of the ellipsoid fit: 1, 2, 4 or 10")
	return cmd
}

// parseRadius validates the radius choice. The service only precomputes
// ellipsoid fits for these radii.
func parseRadius(s string) (float64, error) {
	switch s {
	case "1", "2", "4", "10":
		v, _ := strconv.ParseFloat(s, 64)
		return v, nil
	default:
		return 0, fmt.Errorf("invalid traceback radius %q (choose 1, 2, 4 or 10)", s)
	}
}
