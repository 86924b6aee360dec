package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/channel"
	"github.com/KLM-Solutions/swarm-bot/internal/channel/irc"
	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/gateway"
)

const pruneInterval = time.Minute

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the swarmbot gateway server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			a, err := newApp(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			channels := channel.NewRegistry(log)
			if cfg.Channels.IRC != nil {
				if err := channels.Register(irc.New(*cfg.Channels.IRC, log)); err != nil {
					return fmt.Errorf("registering irc: %w", err)
				}
			}

			if channels.Count() > 0 {
				bridge := conversation.NewBridge(channels, a.sessions, bridgeConfig(&cfg), log)
				bridge.Wire(ctx)
				channels.StartAll(ctx)
				defer func() {
					if err := channels.StopAll(context.Background()); err != nil {
						log.Warn().Err(err).Msg("channel shutdown incomplete")
					}
				}()
				log.Info().
					Int("channels", channels.Count()).
					Str("scope", cfg.Session.Scope).
					Msg("channel bridge active")
			}

			go a.sessions.RunPruner(ctx, pruneInterval)

			srv := gateway.New(cfg, a.sessions, log,
				gateway.WithHooks(a.hooks),
				gateway.WithChannels(channels),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}

// bridgeConfig maps IRC channels to views. Unmapped channels and direct
// messages use irc.view, or the first configured view.
func bridgeConfig(c *config.Config) conversation.BridgeConfig {
	bc := conversation.BridgeConfig{Scope: c.Session.Scope}
	if len(c.Views) > 0 {
		bc.DefaultView = c.Views[0].Name
	}
	if ic := c.Channels.IRC; ic != nil {
		bc.Views = ic.Views
		if ic.View != "" {
			bc.DefaultView = ic.View
		}
	}
	return bc
}
