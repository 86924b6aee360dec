package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

var (
	cfgFile  string
	envFile  string
	logLevel string

	// loaded by the root command before any subcommand runs
	paths config.Paths
	cfg   config.Config
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarmbot",
		Short: "swarmbot routes chat messages to specialist LLM agents",
		Long: "swarmbot serves conversational views backed by agent registries. " +
			"Each message is routed to one specialist, or broadcast to all of them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// Explicit file first, then ./.env, then the home directory file.
			if _, err := config.LoadEnvFiles(envFile, ".env", paths.EnvFile); err != nil {
				return err
			}

			cfg, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			log, err = logging.FromConfig(logging.Config{
				Level: cfg.Logging.Level,
				Style: cfg.Logging.Style,
				File:  cfg.Logging.File,
			})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.swarmbot/config.yaml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file exported before the config is read")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level ("+strings.Join(logging.ValidLevels, ", ")+")")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGatewayCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newMessageCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case log != nil:
		log.Error().Err(err).Msg("command failed")
	default:
		fmt.Fprintln(os.Stderr, "swarmbot:", err)
	}
	return err
}
