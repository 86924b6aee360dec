package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show paths and a configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatus(cmd.OutOrStdout(), paths, &cfg)
			return nil
		},
	}
}

func printStatus(out io.Writer, p config.Paths, c *config.Config) {
	fmt.Fprintf(out, "%s\n\n", version.Info())

	fmt.Fprintf(out, "Config:    %s", p.Config)
	if _, err := os.Stat(p.Config); os.IsNotExist(err) {
		fmt.Fprint(out, " (not found, using defaults)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Data:      %s\n", p.Data)
	fmt.Fprintf(out, "Logs:      %s\n\n", p.Logs)

	fmt.Fprintf(out, "Gateway:   port=%d bind=%s\n", c.Gateway.Port, c.Gateway.Bind)

	cred := "ok"
	if err := config.RequireCredentials(c); err != nil {
		cred = "missing"
	}
	fmt.Fprintf(out, "Models:    primary=%s fallbacks=[%s] credential=%s\n",
		c.Models.Primary, strings.Join(c.Models.Fallbacks, ","), cred)
	if prov, ok := c.Models.Providers[c.Models.Primary]; ok {
		fmt.Fprintf(out, "Provider:  api=%s model=%s\n", prov.API, prov.Model)
	}

	names := make([]string, 0, len(c.Views))
	for _, v := range c.Views {
		names = append(names, v.Name)
	}
	fmt.Fprintf(out, "Views:     %s\n", strings.Join(names, ", "))
	fmt.Fprintf(out, "Broadcast: parallel=%v maxConcurrency=%d\n", c.Broadcast.Parallel, c.Broadcast.MaxConcurrency)
	fmt.Fprintf(out, "Session:   scope=%s idleMinutes=%d\n", c.Session.Scope, c.Session.IdleMinutes)
	fmt.Fprintf(out, "Ledger:    store=%s\n", c.Ledger.Store)

	if irc := c.Channels.IRC; irc != nil {
		fmt.Fprintf(out, "IRC:       server=%s nick=%s channels=%s tls=%v\n",
			irc.Server, irc.Nick, strings.Join(irc.Channels, ","), irc.UseTLS)
	} else {
		fmt.Fprintln(out, "IRC:       (not configured)")
	}

	if issues := config.Validate(c); len(issues) > 0 {
		fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}
}
