package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"htmlbox/pkg/layout"
)

func newLayoutCmd(a *app) *cobra.Command {
	var words bool
	cmd := &cobra.Command{
		Use:   "layout <input.html>",
		Short: "Print the laid out box tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Layout(cmd.Context(), a.cfg.Viewport.Width, a.cfg.Viewport.Height); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			size := p.Engine().ActualSize()
			fmt.Fprintf(out, "document %gx%g\n", size.Width, size.Height)
			dumpBox(out, p.Engine().Root(), 0, words)
			return nil
		},
	}
	cmd.Flags().BoolVar(&words, "words", false, "also print word geometry")
	return cmd
}

func dumpBox(w io.Writer, b *layout.Box, depth int, words bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s %s (%g,%g %gx%g)\n", indent, boxLabel(b), b.Display(),
		b.Location.X, b.Location.Y, b.Size.Width, b.Size.Height)
	if words {
		for _, word := range b.Words {
			fmt.Fprintf(w, "%s  | %q (%g,%g %gx%g)\n", indent, word.Text,
				word.Left, word.Top, word.Width, word.Height)
		}
	}
	for _, c := range b.Children() {
		dumpBox(w, c, depth+1, words)
	}
}

func boxLabel(b *layout.Box) string {
	switch {
	case b.HasText():
		return "#text"
	case b.IsAnonymous():
		return "(anonymous)"
	}
	label := b.TagName()
	if id, ok := b.Attr("id"); ok && id != "" {
		label += "#" + id
	}
	return label
}
