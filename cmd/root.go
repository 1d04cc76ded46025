package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/niritile/internal/config"
	"github.com/zjrosen/niritile/internal/daemon"
	"github.com/zjrosen/niritile/internal/dispatch"
	"github.com/zjrosen/niritile/internal/log"
	"github.com/zjrosen/niritile/internal/niri"
	"github.com/zjrosen/niritile/internal/paths"
	"github.com/zjrosen/niritile/internal/tracing"
	"github.com/zjrosen/niritile/internal/watcher"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "niritile",
	Short:   "Auto-maximize lone tiled windows on niri",
	Long: `niritile watches the niri event stream and maximizes a window whenever it
becomes the only tiled window on its workspace. When a second tiled window
appears the original width is restored. Floating windows are ignored.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runDaemon,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/niritile/config.yaml)")
	rootCmd.Flags().String("socket", "",
		"niri IPC socket path (default: $NIRI_SOCKET)")
	rootCmd.Flags().Bool("debug", false,
		"log at debug level regardless of config")
	rootCmd.Flags().Bool("dry-run", false,
		"log actions instead of sending them to niri")
	rootCmd.Flags().String("log-file", "",
		"log file path (default: stderr)")

	// Bind flags to viper
	_ = viper.BindPFlag("socket", rootCmd.Flags().Lookup("socket"))
	_ = viper.BindPFlag("dispatch.dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("log.file", rootCmd.Flags().Lookup("log-file"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("socket", defaults.Socket)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("dispatch.cooldown", defaults.Dispatch.Cooldown)
	viper.SetDefault("dispatch.dry_run", defaults.Dispatch.DryRun)
	viper.SetDefault("reconnect.initial_interval", defaults.Reconnect.InitialInterval)
	viper.SetDefault("reconnect.max_interval", defaults.Reconnect.MaxInterval)
	viper.SetDefault("reconnect.reset_after", defaults.Reconnect.ResetAfter)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - write the default one so the
		// user has something to edit.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			defaultPath := paths.ConfigFile()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if debug, _ := cmd.Flags().GetBool("debug"); debug || os.Getenv("NIRITILE_DEBUG") != "" {
		cfg.Log.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Log.File != "" {
		cleanup, err := log.Init(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer cleanup()
	} else {
		log.InitStderr()
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	socketPath, err := niri.ResolveSocketPath(cfg.Socket)
	if err != nil {
		return fmt.Errorf("locating niri socket: %w\nIs niri running?", err)
	}
	client := niri.NewClient(socketPath)

	dispatcher := dispatch.New(client, cfg.Dispatch.Cooldown, cfg.Dispatch.DryRun)
	d := daemon.New(daemon.NewClientCompositor(client), dispatcher, provider.Tracer(), cfg.Reconnect)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path := viper.ConfigFileUsed(); path != "" {
		stopWatching, err := watchConfig(path, d)
		if err != nil {
			log.Warn(log.CatConfig, "config reload disabled", "error", err)
		} else {
			defer stopWatching()
		}
	}

	log.Info(log.CatDaemon, "starting", "version", version, "socket", socketPath)
	err = d.Run(ctx)

	if shutdownErr := provider.Shutdown(context.Background()); shutdownErr != nil {
		log.ErrorErr(log.CatDaemon, "tracing shutdown failed", shutdownErr)
	}

	if errors.Is(err, context.Canceled) {
		log.Info(log.CatDaemon, "shutting down")
		return nil
	}
	return err
}

// watchConfig reloads the config file on change and applies the
// runtime-adjustable settings to the running daemon.
func watchConfig(path string, d *daemon.Daemon) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		return nil, err
	}

	go func() {
		for range changes {
			if err := viper.ReadInConfig(); err != nil {
				log.ErrorErr(log.CatConfig, "failed to re-read config", err)
				continue
			}
			var next config.Config
			if err := viper.Unmarshal(&next); err != nil {
				log.ErrorErr(log.CatConfig, "failed to parse config", err)
				continue
			}
			if err := config.Validate(next); err != nil {
				log.ErrorErr(log.CatConfig, "ignoring invalid config", err)
				continue
			}
			d.ApplyConfig(next)
		}
	}()

	return func() { _ = w.Stop() }, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
