package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send one-off messages",
	}

	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

func newMessageSendCmd() *cobra.Command {
	var (
		view   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message to a view and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			a, err := newApp(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			id := conversation.NewSessionID()
			sess, err := a.sessions.Session(ctx, id, view)
			if err != nil {
				return err
			}
			defer a.sessions.End(context.Background(), id)

			events, err := sess.Submit(ctx, message)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}
			printTurn(out, events)
			fmt.Fprintf(cmd.ErrOrStderr(), "[view=%s agent=%s]\n", view, sess.State().CurrentAgentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "product", "view to send the message to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the turn's events as JSON")

	return cmd
}
