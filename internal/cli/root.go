// Package cli exposes the resort agents as a cobra command tree: the HTTP
// server, scheduled jobs and direct agent runs for operators.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/app"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Runtime carries what commands share. Config, Log and App are resolved in
// the root pre-run unless already set.
type Runtime struct {
	Config     *config.Config
	Viper      *viper.Viper
	Log        logger.Logger
	App        *app.App
	AppOptions app.Options

	IsInteractive func() bool
	Now           func() time.Time
}

type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

// NewRootCmd creates the top-level "linapoint" command.
func NewRootCmd(rt *Runtime) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "linapoint",
		Short:         "Lina Point resort booking and marketing agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd.Context(), flags)
		},
	}

	root.SetGlobalNormalizationFunc(dashedFlags)
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to linapoint.yaml")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warning or error")

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newCronCmd(rt),
		newScoutCmd(rt),
		newCurateCmd(rt),
		newMagicCmd(rt),
		newCampaignsCmd(rt),
		newImproveCmd(rt),
	)
	return root
}

// dashedFlags accepts --log_level and --log-level alike.
func dashedFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func (rt *Runtime) setup(ctx context.Context, flags globalFlags) error {
	if rt.App != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.Config == nil {
		cfg, v, err := config.Load(flags.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		rt.Config, rt.Viper = cfg, v
	}
	if flags.dbPath != "" {
		rt.Config.Database.Path = flags.dbPath
	}
	if flags.logLevel != "" {
		rt.Config.Logger.LogLevel = flags.logLevel
		if err := rt.Config.Logger.Validate(); err != nil {
			return err
		}
	}
	if rt.Log == nil {
		if err := logger.InitLogger(&rt.Config.Logger); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		log, err := logger.GetLogger()
		if err != nil {
			return err
		}
		rt.Log = log
	}

	a, err := app.New(ctx, rt.Config, rt.Log, rt.AppOptions)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	rt.App = a
	return nil
}

// Close releases the app, if one was built.
func (rt *Runtime) Close() error {
	if rt.App == nil {
		return nil
	}
	return rt.App.Close()
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now().UTC()
}

func (rt *Runtime) interactive() bool {
	return rt.IsInteractive != nil && rt.IsInteractive()
}
