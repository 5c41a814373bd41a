package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"htmlbox/pkg/page"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "render <input.html>",
		Short: "Render a document to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = strings.TrimSuffix(args[0], ".html") + ".png"
			}
			p, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			height := a.cfg.Viewport.Height
			if full {
				height = 0
			}
			c, err := p.Render(cmd.Context(), a.cfg.Viewport.Width, height)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", args[0], err)
			}
			if err := c.SavePNG(output); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.logger.Info("rendered", zap.String("input", args[0]), zap.String("output", output),
				zap.Int("width", c.Width()), zap.Int("height", c.Height()))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%dx%d)\n", args[0], output, c.Width(), c.Height())
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG file (default: input name with .png)")
	cmd.Flags().BoolVar(&full, "full", false, "render the whole document instead of one viewport")
	return cmd
}

// open loads a document with the configured renderer.
func (a *app) open(cmd *cobra.Command, location string) (*page.Page, error) {
	cfg := *a.cfg
	cfg.Script.Enabled = a.scriptsEnabled(cmd)
	return page.NewRenderer(cfg, a.logger).Open(cmd.Context(), location)
}
