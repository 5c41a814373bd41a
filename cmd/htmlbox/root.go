package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/observability"
)

// app carries the state shared by every subcommand once the root command
// has loaded the configuration.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "htmlbox",
		Short:         "Lay out and render HTML documents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./htmlbox.yaml)")
	flags.Int("width", 0, "viewport width in pixels")
	flags.Int("height", 0, "viewport height in pixels")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("no-script", false, "do not run inline scripts")
	_ = a.v.BindPFlag("viewport.width", flags.Lookup("width"))
	_ = a.v.BindPFlag("viewport.height", flags.Lookup("height"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))

	cmd.AddCommand(newRenderCmd(a), newLayoutCmd(a), newCompareCmd(a), newVersionCmd())
	return cmd
}

// init reads the configuration and starts logging. Unset flags leave the
// file, environment or default value in place.
func (a *app) init() error {
	if err := config.ReadInConfig(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "htmlbox"})
		return err
	}
	a.cfg = cfg
	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	a.logger.Debug("configuration loaded", zap.String("file", a.v.ConfigFileUsed()))
	return nil
}

func (a *app) scriptsEnabled(cmd *cobra.Command) bool {
	off, _ := cmd.Flags().GetBool("no-script")
	return a.cfg.Script.Enabled && !off
}
