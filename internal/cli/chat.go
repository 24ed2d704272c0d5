package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/chat"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/spf13/cobra"
)

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <assistant|knowledge|schedule> [message...]",
		Short: "Ask the assistant a question",
		Long: `Ask the assistant a question in one of its modes.

Without a message an interactive session starts; type /exit or send EOF to
leave it. The token is refreshed in the background while it runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := chat.ParseMode(args[0])
			if err != nil {
				return err
			}
			a.greet(cmd.Context(), cmd.OutOrStdout())

			if len(args) > 1 {
				return a.ask(cmd.Context(), cmd.OutOrStdout(), mode, strings.Join(args[1:], " "))
			}
			return a.repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), mode)
		},
	}
}

func (a *app) ask(ctx context.Context, out io.Writer, mode chat.Mode, message string) error {
	reply, err := a.chat.Ask(ctx, mode, message)
	if err != nil {
		return err
	}
	printReply(out, reply)
	return nil
}

func (a *app) repl(ctx context.Context, in io.Reader, out io.Writer, mode chat.Mode) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.client.RunBackgroundRefresh(ctx, a.cfg.GetBackgroundRefreshInterval())

	fmt.Fprintf(out, "Chatting in %s mode. /exit to quit.\n", mode)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		err := a.ask(ctx, out, mode, line)
		switch {
		case err == nil:
		case apperrors.IsAuthError(err):
			return err
		default:
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// greet prints the once-a-day welcome. Failures only cost the greeting.
func (a *app) greet(ctx context.Context, out io.Writer) {
	should, err := a.greeter.ShouldGreet(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Reading last greeting failed")
		return
	}
	if !should {
		return
	}

	name := "there"
	if user, err := a.sessions.User(ctx); err == nil && user != nil && user.FullName != "" {
		name = strings.Fields(user.FullName)[0]
	}
	fmt.Fprintf(out, "Hello, %s! Ask me about your studies, your files or your timetable.\n", name)
	if err := a.greeter.MarkGreeted(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Saving greeting time failed")
	}
}

func printReply(out io.Writer, reply *api.ChatReply) {
	fmt.Fprintln(out, reply.Answer)
	if len(reply.Sources) > 0 {
		fmt.Fprintf(out, "Sources: %s\n", strings.Join(reply.Sources, ", "))
	}
}

func (a *app) newHistoryCmd() *cobra.Command {
	var clearHistory bool

	cmd := &cobra.Command{
		Use:   "history <assistant|knowledge|schedule>",
		Short: "Show or clear the stored chat history of a mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := chat.ParseMode(args[0])
			if err != nil {
				return err
			}
			history := a.chat.History()
			out := cmd.OutOrStdout()

			if clearHistory {
				if err := history.Clear(cmd.Context(), mode); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %s history\n", mode)
				return nil
			}

			messages, err := history.Load(cmd.Context(), mode)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Fprintf(out, "No %s history\n", mode)
				return nil
			}
			for _, m := range messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", m.CreatedAt.In(a.now().Location()).Format("2006-01-02 15:04"), m.Role, m.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "clear", false, "Delete the history instead of printing it")
	return cmd
}
