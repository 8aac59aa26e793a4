package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/planably/quartermaster/internal/config"
	"github.com/planably/quartermaster/internal/notify"
	"github.com/planably/quartermaster/internal/notify/discord"
	"github.com/planably/quartermaster/internal/notify/slack"
	"github.com/planably/quartermaster/internal/server"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Quartermaster API server",
		Long: `Starts the HTTP API with live change streaming. When notification channels
are configured, utilization alerts and the scheduled digest are delivered to
them while the server runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher, err := buildDispatcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	startDigest(ctx, gormDB, dispatcher, cfg)

	return server.Start(ctx, server.StartOpts{
		DB:            gormDB,
		Port:          port,
		Out:           cmd.OutOrStdout(),
		Notifier:      dispatcher,
		WarnThreshold: cfg.Notify.UtilizationWarn,
	})
}

// buildDispatcher connects the configured notification channels. A channel
// that fails to connect is skipped with a log line rather than failing the
// server.
func buildDispatcher(ctx context.Context, cfg *config.Config) (*notify.Dispatcher, error) {
	var adapters []notify.Adapter

	if cfg.Notify.Slack.BotToken != "" {
		a, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return nil, err
		}
		if err := a.Connect(ctx); err != nil {
			log.Printf("slack disabled: %v", err)
		} else {
			adapters = append(adapters, a)
		}
	}

	if cfg.Notify.Discord.BotToken != "" {
		a, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			return nil, err
		}
		if err := a.Connect(ctx); err != nil {
			log.Printf("discord disabled: %v", err)
		} else {
			adapters = append(adapters, a)
		}
	}

	return notify.NewDispatcher(adapters...), nil
}

// startDigest launches the scheduled digest loop when a cron expression and
// at least one channel are configured.
func startDigest(ctx context.Context, gormDB *gorm.DB, d *notify.Dispatcher, cfg *config.Config) {
	if cfg.Notify.DigestCron == "" || !d.Enabled() {
		return
	}
	teamID, err := resolveTeamID(gormDB, "")
	if err != nil {
		log.Printf("digest disabled: %v", err)
		return
	}
	log.Printf("digest scheduled: %s", cfg.Notify.DigestCron)
	go notify.RunDigestSchedule(ctx, gormDB, d, cfg.Notify.DigestCron, teamID)
}
