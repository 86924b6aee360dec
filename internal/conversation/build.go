package conversation

import (
	"fmt"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/agent"
	"github.com/KLM-Solutions/swarm-bot/internal/catalog"
	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/hooks"
	"github.com/KLM-Solutions/swarm-bot/internal/ledger"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
	"github.com/KLM-Solutions/swarm-bot/internal/routing"
	"github.com/KLM-Solutions/swarm-bot/internal/store"
)

// NewManagerFromConfig wires router, runner and one engine per configured
// view. db backs the ledgers when cfg.Ledger.Store is "sqlite" and may be
// nil otherwise.
func NewManagerFromConfig(cfg *config.Config, client llm.Client, db *store.DB, h *hooks.Manager, log *logging.Logger) (*Manager, error) {
	router := routing.NewRouter(client, routing.Config{
		Model:       cfg.Router.Model,
		Temperature: cfg.Router.Temperature,
		MaxTokens:   cfg.Router.MaxTokens,
	}, log)
	runner := agent.NewRunner(agent.RunnerConfig{
		Model:       cfg.Agents.Model,
		MaxTokens:   cfg.Agents.MaxTokens,
		Temperature: cfg.Agents.Temperature,
	}, client, log)

	var engineOpts []EngineOption
	if cfg.Broadcast.Parallel {
		engineOpts = append(engineOpts, WithParallelBroadcast(cfg.Broadcast.MaxConcurrency))
	}

	views := make([]View, 0, len(cfg.Views))
	for _, vc := range cfg.Views {
		reg, ok := catalog.Lookup(vc.Registry)
		if !ok {
			return nil, &config.ConfigError{Message: fmt.Sprintf("view %q: unknown registry %q", vc.Name, vc.Registry)}
		}
		mode := vc.Mode
		if mode == "" {
			mode = config.ModeSingle
		}
		views = append(views, View{
			Name:    vc.Name,
			Mode:    mode,
			Booking: vc.Booking,
			Engine:  NewEngine(reg, router, runner, log, engineOpts...),
		})
	}

	opts := []ManagerOption{
		WithHooks(h),
		WithIdleTimeout(time.Duration(cfg.Session.IdleMinutes) * time.Minute),
	}
	if cfg.Ledger.Store == "sqlite" {
		if db == nil {
			return nil, &config.ConfigError{Message: "ledger.store is sqlite but no database is open"}
		}
		opts = append(opts, WithStoreFactory(func(id string) ledger.Store {
			return store.NewAppointmentStore(db, id)
		}))
	}
	return NewManager(views, log, opts...)
}
