package cli

import (
	"fmt"

	"github.com/KLM-Solutions/swarm-bot/internal/agent"
	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/hooks"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/store"
)

// app is the conversation stack shared by every command that talks to agents.
type app struct {
	client   *agent.FailoverClient
	hooks    *hooks.Manager
	sessions *conversation.Manager
	db       *store.DB
}

// newApp validates the config and builds the conversation stack. A missing
// credential fails here, before anything is served.
func newApp(c *config.Config) (*app, error) {
	if issues := config.Validate(c); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	if err := config.RequireCredentials(c); err != nil {
		return nil, err
	}

	registry, err := llm.NewRegistryFromConfig(c.Models, log)
	if err != nil {
		return nil, err
	}
	client := agent.NewFailoverClient(registry, c.Models.Primary, c.Models.Fallbacks, log)

	a := &app{client: client, hooks: hooks.NewManager(log)}

	if c.Ledger.Store == "sqlite" {
		path := c.Ledger.Path
		if path == "" {
			path = paths.Database
		}
		if path != store.MemoryPath {
			if err := paths.EnsureDirs(); err != nil {
				return nil, err
			}
		}
		a.db, err = store.Open(path, log)
		if err != nil {
			return nil, fmt.Errorf("opening ledger database: %w", err)
		}
		log.Info().Str("path", path).Msg("using SQLite appointment ledger")
	}

	a.sessions, err = conversation.NewManagerFromConfig(c, client, a.db, a.hooks, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Debug().
		Str("primary", c.Models.Primary).
		Strs("fallbacks", c.Models.Fallbacks).
		Int("views", len(c.Views)).
		Msg("conversation stack ready")
	return a, nil
}

// Close releases the ledger database.
func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
