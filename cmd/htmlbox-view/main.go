// Command htmlbox-view shows a rendered document in a window and lays it out
// again whenever the window is resized.
package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/observability"
	"htmlbox/pkg/page"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "htmlbox-view [file or URL]",
		Short:         "Show a rendered document in a window",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadInConfig(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return err
			}
			observability.InitializeLogger(cfg.Logger)

			location := ""
			if len(args) == 1 {
				location = args[0]
			}
			return show(cfg, observability.GetLogger(), location)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./htmlbox.yaml)")
	return cmd
}

func show(cfg *config.Config, logger *zap.Logger, location string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.New()
	w := a.NewWindow("htmlbox")
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)))

	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillOriginal
	status := widget.NewLabel("Enter a file or URL and press Enter")

	view := newViewer(page.NewRenderer(*cfg, logger), logger, func(r result) {
		fyne.Do(func() {
			if r.err != nil {
				status.SetText("Error: " + r.err.Error())
				return
			}
			img.Image = r.image
			img.Refresh()
			status.SetText(fmt.Sprintf("%s (%dx%d)", r.location, r.image.Bounds().Dx(), r.image.Bounds().Dy()))
			if r.title != "" {
				w.SetTitle("htmlbox - " + r.title)
			}
		})
	})
	go view.run(ctx)

	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com or ./page.html")
	entry.OnSubmitted = func(loc string) {
		status.SetText("Loading " + loc + "...")
		go view.open(ctx, loc)
	}

	scroll := container.NewScroll(img)
	body := container.New(&resizeLayout{onResize: view.resize}, scroll)
	w.SetContent(container.NewBorder(entry, status, nil, nil, body))
	w.Canvas().Focus(entry)
	w.SetOnClosed(cancel)

	if location != "" {
		entry.SetText(location)
		entry.OnSubmitted(location)
	}
	w.ShowAndRun()
	view.close()
	return nil
}
