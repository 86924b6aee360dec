package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/catalog"
	"github.com/KLM-Solutions/swarm-bot/internal/config"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect the agent registries",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsShowCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the agents of every configured view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAgents(cmd.OutOrStdout(), cfg.Views, view)
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "only list this view")
	return cmd
}

func newAgentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <registry> <agent>",
		Short: "Print an agent's instruction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown registry %q (known: %s)", args[0], strings.Join(catalog.Names(), ", "))
			}
			id := strings.Join(args[1:], " ")
			def, ok := reg.Lookup(id)
			if !ok {
				return fmt.Errorf("registry %s has no agent %q", reg.Name(), id)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agent:    %s\n", def.ID)
			if def.Color != "" {
				fmt.Fprintf(out, "Color:    %s\n", def.Color)
			}
			if def.Routing != "" {
				fmt.Fprintf(out, "Routing:  %s\n", def.Routing)
			}
			if len(def.Tools) > 0 {
				fmt.Fprintf(out, "Tools:    %s\n", strings.Join(def.Tools, ", "))
			}
			fmt.Fprintf(out, "\n%s\n", def.Instruction)
			return nil
		},
	}
}

// listAgents prints each view with its agents. A non-empty only restricts
// the output to that view.
func listAgents(out io.Writer, views []config.ViewConfig, only string) error {
	found := false
	for _, v := range views {
		if only != "" && v.Name != only {
			continue
		}
		reg, ok := catalog.Lookup(v.Registry)
		if !ok {
			return fmt.Errorf("view %q: unknown registry %q", v.Name, v.Registry)
		}
		found = true

		mode := v.Mode
		if mode == "" {
			mode = config.ModeSingle
		}
		fmt.Fprintf(out, "%s (registry=%s mode=%s booking=%v)\n", v.Name, reg.Name(), mode, v.Booking)
		for _, a := range reg.Agents() {
			marker := " "
			if a.ID == reg.TriageID() {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %-30s %s\n", marker, a.ID, a.Color)
		}
	}
	if only != "" && !found {
		return fmt.Errorf("unknown view %q", only)
	}
	return nil
}
