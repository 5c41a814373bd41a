package main

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"htmlbox/pkg/render"
)

var errMismatch = errors.New("renders differ")

func newCompareCmd(a *app) *cobra.Command {
	var (
		opts     render.CompareOptions
		diffPath string
	)
	cmd := &cobra.Command{
		Use:   "compare <test.html> <reference.html>",
		Short: "Render two documents and check that they look the same",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actual, err := a.renderImage(cmd, args[0])
			if err != nil {
				return err
			}
			expected, err := a.renderImage(cmd, args[1])
			if err != nil {
				return err
			}

			opts.Diff = diffPath != ""
			res, err := render.Compare(actual.Image(), expected.Image(), opts)
			if err != nil {
				return err
			}
			a.logger.Debug("compared", zap.Int("different", res.DifferentPixels), zap.Int("maxDifference", res.MaxDifference))

			if !res.Match && res.DiffImage != nil {
				f, err := os.Create(diffPath)
				if err != nil {
					return err
				}
				if err := png.Encode(f, res.DiffImage); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d pixels differ (max channel difference %d)\n",
				res.DifferentPixels, res.TotalPixels, res.MaxDifference)
			if !res.Match {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Tolerance, "tolerance", 2, "largest per-channel difference counted as equal")
	cmd.Flags().IntVar(&opts.FuzzyRadius, "fuzzy", 0, "let pixels match neighbours within this radius")
	cmd.Flags().Float64Var(&opts.MaxDifferentPercent, "max-percent", 0, "accept up to this percentage of differing pixels")
	cmd.Flags().StringVar(&diffPath, "diff", "", "write a diff image here when the renders differ")
	return cmd
}

// renderImage renders one viewport of location.
func (a *app) renderImage(cmd *cobra.Command, location string) (*render.Canvas, error) {
	p, err := a.open(cmd, location)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	c, err := p.Render(cmd.Context(), a.cfg.Viewport.Width, a.cfg.Viewport.Height)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", location, err)
	}
	return c, nil
}
