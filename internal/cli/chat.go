package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
)

func newChatCmd() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a view's agents in the terminal",
		Long: "Starts an interactive conversation. Commands: /clear resets the conversation, " +
			"/agents lists the view's agents, /appointments lists bookings, /quit exits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runChat(ctx, a.sessions, view, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&view, "view", "product", "view to converse in")
	return cmd
}

// runChat reads one message per line from in until EOF or /quit.
func runChat(ctx context.Context, sessions *conversation.Manager, view string, in io.Reader, out io.Writer) error {
	id := conversation.NewSessionID()
	sess, err := sessions.Session(ctx, id, view)
	if err != nil {
		return err
	}
	defer sessions.End(context.Background(), id)

	reg := sess.View().Registry()
	fmt.Fprintf(out, "swarmbot %s (%d agents). Type /quit to exit.\n", view, reg.Len())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%s] > ", sess.State().CurrentAgentID)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			sess.Clear(ctx)
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/agents":
			for _, a := range reg.Agents() {
				fmt.Fprintf(out, "  %s\n", a.ID)
			}
			continue
		case "/appointments":
			printAppointments(ctx, out, sess)
			continue
		}

		events, err := sess.Submit(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printTurn(out, events)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// printTurn writes booking outcomes and the formatted reply of one turn.
func printTurn(out io.Writer, events []domain.Event) {
	for _, ev := range events {
		if ev.Type == domain.EventBookingResult && ev.Booking != nil {
			fmt.Fprintf(out, "  [booking] %s\n", ev.Booking.Message)
		}
	}
	if reply, ok := conversation.LastReply(events); ok {
		fmt.Fprintln(out, conversation.FormatMessage(reply))
	}
}

func printAppointments(ctx context.Context, out io.Writer, sess *conversation.Session) {
	recs, err := sess.Appointments(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No appointments booked.")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(out, "  %s %s (booked %s)\n", r.Date, r.Time, r.BookedAt.Format("2006-01-02 15:04"))
	}
}
