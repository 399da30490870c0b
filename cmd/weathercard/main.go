package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"weathercard/config"
	"weathercard/internal/api"
	"weathercard/internal/display"
	"weathercard/internal/logging"
	"weathercard/internal/mqtt"
	"weathercard/internal/refresher"
	"weathercard/internal/weather"
	"weathercard/internal/widget"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "weathercard",
		Short:        "City weather card",
		Long:         "Look up current weather for a city and render it as a themed card",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, cfg.Log.Format)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func newService(cfg *config.Config, d widget.Display, logger *slog.Logger) (*widget.Service, error) {
	provider, err := weather.NewProvider(weather.Settings{
		Provider: cfg.Weather.Provider,
		APIKey:   cfg.Weather.APIKey,
		BaseURL:  cfg.Weather.BaseURL,
		Units:    cfg.Weather.Units,
		Timeout:  cfg.Weather.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}

	dates, err := widget.ParseDateZone(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone: %w", err)
	}

	return widget.NewService(widget.ServiceConfig{
		Provider: provider,
		Display:  d,
		Dates:    dates,
		Logger:   logger,
	}), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the weather card service",
		Long:  "Start the web card, JSON API, MQTT display and scheduled refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			recorder := display.NewRecorder()
			displays := display.Multi{recorder}

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
				Logger:      logger,
			})
			if err != nil {
				logger.Warn("MQTT connection failed, continuing without it", "error", err)
			} else if cfg.MQTT.Enabled {
				logger.Info("MQTT connected", "broker", cfg.MQTT.Broker)
				displays = append(displays, publisher)
				defer publisher.Close()
			}

			service, err := newService(cfg, displays, logger)
			if err != nil {
				return err
			}

			refresh := refresher.New(refresher.Config{
				Service:  service,
				City:     cfg.Refresh.City,
				Interval: cfg.Refresh.Interval,
				Enabled:  cfg.Refresh.Enabled,
				Logger:   logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := refresh.Start(ctx); err != nil {
					logger.Error("refresher error", "error", err)
				}
			}()

			var server *api.Server
			if cfg.API.Enabled {
				server = api.NewServer(api.ServerConfig{
					Port:       cfg.API.Port,
					WebPath:    cfg.API.WebPath,
					Service:    service,
					Recorder:   recorder,
					Refresher:  refresh,
					Weather:    cfg.Weather,
					Background: cfg.Background,
					ConfigPath: configFile,
					Logger:     logger,
				})

				go func() {
					if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("API server error", "error", err)
						stop()
					}
				}()
			}

			logger.Info("weathercard started, press Ctrl+C to stop", "provider", service.Provider().Name())

			<-ctx.Done()
			logger.Info("shutting down")

			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Stop(shutdownCtx); err != nil {
					logger.Warn("API server shutdown failed", "error", err)
				}
			}

			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <city...>",
		Short: "Look up the current weather for a city once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			service, err := newService(cfg, display.NewTerminal(cmd.OutOrStdout()), logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The terminal display has already shown the alert.
			if _, err := service.Lookup(ctx, strings.Join(args, " ")); err != nil {
				cmd.SilenceErrors = true
				return err
			}
			return nil
		},
	}
}

func themeCmd() *cobra.Command {
	var night bool

	cmd := &cobra.Command{
		Use:   "theme <condition>",
		Short: "Show the theme and image chosen for a condition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := widget.SelectTheme(args[0], !night)
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\nImage: %s\n", result.Theme, result.Image)
			return nil
		},
	}

	cmd.Flags().BoolVar(&night, "night", false, "select the night variant")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the weather provider configuration",
		Long:  "Run one lookup against the configured provider to verify credentials and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			city := cfg.Refresh.City
			if strings.TrimSpace(city) == "" {
				city = "London"
			}

			service, err := newService(cfg, nil, logger)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration FAILED: %v\n", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Testing %s with %q...\n", service.Provider().Name(), city)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			fields, err := service.Lookup(ctx, city)
			if err != nil {
				var lookupErr *widget.LookupError
				if errors.As(err, &lookupErr) {
					fmt.Fprintf(cmd.OutOrStdout(), "Lookup FAILED (%s): %v\n", lookupErr.Kind, errors.Unwrap(lookupErr))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Lookup FAILED: %v\n", err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Lookup SUCCESS!")
			fmt.Fprintf(cmd.OutOrStdout(), "\n  City:        %s\n", fields.City)
			fmt.Fprintf(cmd.OutOrStdout(), "  Date:        %s\n", fields.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "  Temperature: %s\n", fields.Temperature)
			fmt.Fprintf(cmd.OutOrStdout(), "  Condition:   %s\n", fields.Condition)
			fmt.Fprintf(cmd.OutOrStdout(), "  Theme:       %s (%s)\n", fields.Theme.Theme, fields.Theme.Image)
			return nil
		},
	}
}
